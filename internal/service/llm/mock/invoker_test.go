package mock

import (
	"context"
	"errors"
	"testing"

	"call-summary-service/internal/service/llm"
)

func TestInvoker_MatchesDefaultResponses(t *testing.T) {
	inv := New()

	tests := []struct {
		prompt string
		want   string
	}{
		{"Human: What was the customer intent for the call.", " Billing enquiry"},
		{"Human: what is the customer sentiment at the end of the call", " neutral"},
		{"Human: Did the customer call to cancel an existing service?", " No"},
		{"Human: unrelated", ""},
	}

	for _, tt := range tests {
		got, err := inv.Invoke(context.Background(), tt.prompt, llm.DeterministicConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Invoke(%q) = %q, want %q", tt.prompt, got, tt.want)
		}
	}

	if n := len(inv.Calls()); n != len(tests) {
		t.Errorf("expected %d recorded calls, got %d", len(tests), n)
	}
}

func TestInvoker_RecordsConfig(t *testing.T) {
	inv := New()
	cfg := llm.DeterministicConfig()

	_, _ = inv.Invoke(context.Background(), "p", cfg)

	calls := inv.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Config.MaxTokens != 4096 || calls[0].Config.TopP != 1 || calls[0].Config.Temperature != 0 {
		t.Errorf("unexpected config %+v", calls[0].Config)
	}
}

func TestInvoker_FailWith(t *testing.T) {
	inv := New()
	inv.FailWith(llm.ErrAccessDenied)

	_, err := inv.Invoke(context.Background(), "p", llm.DeterministicConfig())
	if !errors.Is(err, llm.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestInvoker_CancelledContext(t *testing.T) {
	inv := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := inv.Invoke(ctx, "p", llm.DeterministicConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
