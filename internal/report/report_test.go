package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"call-summary-service/internal/apperr"
	"call-summary-service/internal/models"
	"call-summary-service/internal/service/storage/memory"
)

func put(t *testing.T, store *memory.Store, key string, v any) {
	t.Helper()
	body, ok := v.([]byte)
	if !ok {
		var err error
		if body, err = json.Marshal(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Put(context.Background(), "out", key, body, "application/json"); err != nil {
		t.Fatal(err)
	}
}

func TestExport_WritesOneRowPerRecord(t *testing.T) {
	store := memory.New()

	enriched := &models.OutputRecord{
		ConversationID:        "c1",
		RecordingID:           "r1",
		StartTime:             "2024-05-01T10:00:00Z",
		EndTime:               "2024-05-01T10:05:00Z",
		DurationMs:            "300000",
		InitialDirection:      "inbound",
		IsTranscriptAvailable: true,
		S3ObjectKeyMetadata:   "a/r1.opus_metadata.json",
	}
	for _, k := range enrichmentKeys {
		if err := enriched.SetEnrichment(k, "answer "+k); err != nil {
			t.Fatal(err)
		}
	}
	plain := &models.OutputRecord{ConversationID: "c2", RecordingID: "r2", DurationMs: "1", StartTime: "2024-05-01T11:00:00Z"}

	put(t, store, "summary/year=2024/month=05/day=01/recording-r1.summary.json", enriched)
	put(t, store, "summary/year=2024/month=05/day=01/recording-r2.summary.json", plain)
	put(t, store, "summary/year=2024/month=05/day=01/recording-bad.summary.json", []byte("{broken"))
	put(t, store, "summary/year=2024/month=05/day=02/recording-r3.summary.json", plain)

	exp, err := New(store, "out")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := exp.Export(context.Background(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "conversation_id" || rows[0][len(Header)-1] != models.KeyIsDiscountOffer {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "c1" || rows[1][4] != "300000" || rows[1][8] != "TRUE" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if got := rows[1][len(Header)-1]; got != "answer "+models.KeyIsDiscountOffer {
		t.Errorf("expected enrichment column, got %q", got)
	}
	if rows[2][0] != "c2" {
		t.Errorf("unexpected second row %v", rows[2])
	}
}

func TestExport_EmptyPartition(t *testing.T) {
	exp, _ := New(memory.New(), "out")

	var buf bytes.Buffer
	n, err := exp.Export(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), &buf)
	if err != nil || n != 0 {
		t.Fatalf("expected empty export, got %d, %v", n, err)
	}
	if buf.Len() == 0 {
		t.Error("expected a workbook with only the header row")
	}
}

func TestNew_MissingBucket(t *testing.T) {
	if _, err := New(memory.New(), ""); !apperr.IsKind(err, apperr.KindConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}
