package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMessage(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordMessage("", 0.5)
	m.RecordMessage("", 0.2)
	m.RecordMessage("input", 0.1)

	if got := testutil.ToFloat64(m.MessagesTotal); got != 3 {
		t.Errorf("expected 3 messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsProcessed); got != 2 {
		t.Errorf("expected 2 records processed, got %v", got)
	}
	if got := testutil.ToFloat64(m.MessagesFailed.WithLabelValues("input")); got != 1 {
		t.Errorf("expected 1 input failure, got %v", got)
	}
}

func TestRecordSiblings(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordSiblings(true, false, true)
	m.RecordSiblings(true, true, false)

	if got := testutil.ToFloat64(m.SiblingsFound.WithLabelValues("recording")); got != 2 {
		t.Errorf("expected 2 recordings, got %v", got)
	}
	if got := testutil.ToFloat64(m.SiblingsFound.WithLabelValues("call_metadata")); got != 1 {
		t.Errorf("expected 1 call metadata, got %v", got)
	}
	if got := testutil.ToFloat64(m.TranscriptsTotal.WithLabelValues("available")); got != 1 {
		t.Errorf("expected 1 available transcript, got %v", got)
	}
	if got := testutil.ToFloat64(m.TranscriptsTotal.WithLabelValues("missing")); got != 1 {
		t.Errorf("expected 1 missing transcript, got %v", got)
	}
}

func TestRecordKafkaPublish(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordKafkaPublish("work-items", "work_item", nil, 0.01)
	m.RecordKafkaPublish("work-items", "work_item", errors.New("broker down"), 0.01)

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("work-items", "work_item")); got != 2 {
		t.Errorf("expected 2 publishes, got %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("work-items", "work_item")); got != 1 {
		t.Errorf("expected 1 publish error, got %v", got)
	}
}
