package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"call-summary-service/internal/service/llm"
)

func newTestInvoker(t *testing.T, h http.HandlerFunc) llm.Invoker {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewInvoker(
		llm.WithApiKey("test-key"),
		llm.WithModel("claude-test"),
		llm.WithBaseURL(srv.URL),
	)
}

func TestInvoke_SendsDeterministicConfig(t *testing.T) {
	var req map[string]any
	inv := newTestInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
"content":[{"type":"text","text":"Billing "},{"type":"text","text":"enquiry"}],
"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":2}}`)
	})

	got, err := inv.Invoke(context.Background(), "Human: hi Assistant:", llm.DeterministicConfig())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if got != "Billing enquiry" {
		t.Errorf("expected concatenated text blocks, got %q", got)
	}

	if req["model"] != "claude-test" {
		t.Errorf("expected model claude-test, got %v", req["model"])
	}
	if req["max_tokens"] != float64(4096) {
		t.Errorf("expected max_tokens 4096, got %v", req["max_tokens"])
	}
	if req["temperature"] != float64(0) {
		t.Errorf("expected temperature 0, got %v", req["temperature"])
	}
	if _, ok := req["top_p"]; ok {
		t.Errorf("expected top_p omitted at its default, got %v", req["top_p"])
	}
	stops, _ := req["stop_sequences"].([]any)
	if len(stops) != 1 || stops[0] != llm.StopEndOfTurn {
		t.Errorf("unexpected stop sequences %v", req["stop_sequences"])
	}
}

func TestInvoke_EmptyCompletionIsNotAnError(t *testing.T) {
	inv := newTestInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_2","type":"message","role":"assistant","model":"claude-test",
"content":[],"stop_reason":"stop_sequence","stop_sequence":"\n\nHuman:","usage":{"input_tokens":10,"output_tokens":0}}`)
	})

	got, err := inv.Invoke(context.Background(), "prompt", llm.DeterministicConfig())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty completion, got %q", got)
	}
}

func TestInvoke_ForbiddenMapsToAccessDenied(t *testing.T) {
	inv := newTestInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"permission_error","message":"model not enabled"}}`)
	})

	_, err := inv.Invoke(context.Background(), "prompt", llm.DeterministicConfig())
	if !errors.Is(err, llm.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestInvoke_OtherErrorsPropagate(t *testing.T) {
	inv := newTestInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	})

	_, err := inv.Invoke(context.Background(), "prompt", llm.DeterministicConfig())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, llm.ErrAccessDenied) {
		t.Error("bad request must not be reported as access denied")
	}
}

func TestNewParams_TopP(t *testing.T) {
	tests := []struct {
		name string
		topP float64
		want bool
	}{
		{"default omitted", 1, false},
		{"unset omitted", 0, false},
		{"narrowed sent", 0.9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := llm.DeterministicConfig()
			cfg.TopP = tt.topP
			p := newParams("claude-test", "hi", cfg)
			if got := p.TopP.Valid(); got != tt.want {
				t.Errorf("expected top_p set=%v, got %v", tt.want, got)
			}
			if !p.Temperature.Valid() {
				t.Error("expected temperature to always be sent")
			}
		})
	}
}
