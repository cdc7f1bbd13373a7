package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"call-summary-service/internal/apperr"
)

type call struct {
	bucket, key string
}

// testProcessor fails for keys listed in fail.
type testProcessor struct {
	calls []call
	fail  map[string]error
}

func (p *testProcessor) Process(ctx context.Context, bucket, key string) (int, error) {
	p.calls = append(p.calls, call{bucket, key})
	if err := p.fail[key]; err != nil {
		return 0, err
	}
	return 1, nil
}

func msg(id, body string) Message {
	return Message{ID: id, Body: []byte(body)}
}

func TestHandleBatch_CountsRecords(t *testing.T) {
	p := &testProcessor{}
	h := New(p)

	res, err := h.HandleBatch(context.Background(), []Message{
		msg("1", `{"s3_bucket_name":"b","s3_object_key":"k1"}`),
		msg("2", `{"s3_bucket_name":"b","s3_object_key":"k2"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RecordsProcessed != 2 {
		t.Errorf("expected 2 records, got %d", res.RecordsProcessed)
	}
	if len(p.calls) != 2 || p.calls[0] != (call{"b", "k1"}) || p.calls[1] != (call{"b", "k2"}) {
		t.Errorf("unexpected calls %v", p.calls)
	}
}

func TestHandleBatch_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("storage unavailable")
	p := &testProcessor{fail: map[string]error{"k2": boom}}
	h := New(p)

	res, err := h.HandleBatch(context.Background(), []Message{
		msg("1", `{"s3_bucket_name":"b","s3_object_key":"k1"}`),
		msg("2", `{"s3_bucket_name":"b","s3_object_key":"k2"}`),
		msg("3", `{"s3_bucket_name":"b","s3_object_key":"k3"}`),
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected processor error, got %v", err)
	}
	if res.RecordsProcessed != 1 {
		t.Errorf("expected 1 record before the failure, got %d", res.RecordsProcessed)
	}
	if len(p.calls) != 2 {
		t.Errorf("expected processing to stop after the failure, got %d calls", len(p.calls))
	}
	if len(res.Failures) != 1 || res.Failures[0].MessageID != "2" {
		t.Errorf("unexpected failures %+v", res.Failures)
	}
}

func TestHandleBatchIsolated_ContinuesPastFailures(t *testing.T) {
	p := &testProcessor{fail: map[string]error{"k1": errors.New("boom")}}
	h := New(p)

	res := h.HandleBatchIsolated(context.Background(), []Message{
		msg("1", `{"s3_bucket_name":"b","s3_object_key":"k1"}`),
		msg("2", `not json`),
		msg("3", `{"s3_bucket_name":"b"}`),
		msg("4", `{"s3_bucket_name":"b","s3_object_key":"k4"}`),
	})

	if res.RecordsProcessed != 1 {
		t.Errorf("expected 1 record, got %d", res.RecordsProcessed)
	}
	if len(res.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %+v", res.Failures)
	}
	ids := []string{res.Failures[0].MessageID, res.Failures[1].MessageID, res.Failures[2].MessageID}
	if ids[0] != "1" || ids[1] != "2" || ids[2] != "3" {
		t.Errorf("unexpected failed ids %v", ids)
	}
	if !apperr.IsKind(res.Failures[1].Err, apperr.KindInput) || !apperr.IsKind(res.Failures[2].Err, apperr.KindInput) {
		t.Errorf("expected input errors for malformed messages, got %v / %v", res.Failures[1].Err, res.Failures[2].Err)
	}
	if len(p.calls) != 2 {
		t.Errorf("malformed messages must not reach the processor, got %d calls", len(p.calls))
	}
}

func TestHandleBatch_Empty(t *testing.T) {
	res, err := New(&testProcessor{}).HandleBatch(context.Background(), nil)
	if err != nil || res.RecordsProcessed != 0 {
		t.Errorf("expected empty result, got %+v, %v", res, err)
	}
}

func TestHandle_LogsRejectedMessage(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	res := New(&testProcessor{}).HandleBatchIsolated(context.Background(), []Message{msg("m-7", `not json`)})
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v", res.Failures)
	}

	out := buf.String()
	for _, want := range []string{`"message":"Message rejected"`, `"messageId":"m-7"`, `"runId":`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output, got %s", want, out)
		}
	}
}
