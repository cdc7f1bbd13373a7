package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"call-summary-service/internal/app"
	"call-summary-service/internal/apperr"
	"call-summary-service/internal/service/dispatch"
)

// Dispatcher processes a batch and stops at the first failure.
type Dispatcher interface {
	HandleBatch(ctx context.Context, msgs []dispatch.Message) (dispatch.Result, error)
}

type dispatchRequest struct {
	Messages []struct {
		ID   string          `json:"id"`
		Body json.RawMessage `json:"body"`
	} `json:"messages"`
}

type dispatchResponse struct {
	RecordsProcessed int    `json:"records_processed"`
	Error            string `json:"error,omitempty"`
	FailureKind      string `json:"failure_kind,omitempty"`
	MessageID        string `json:"message_id,omitempty"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application, dispatcher Dispatcher) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if application == nil || application.StartupTime.IsZero() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/dispatch", dispatchHandler(dispatcher))
	})

	return r
}

func dispatchHandler(d Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, dispatchResponse{
				Error:       "malformed request body: " + err.Error(),
				FailureKind: apperr.KindInput.String(),
			})
			return
		}

		msgs := make([]dispatch.Message, len(req.Messages))
		for i, m := range req.Messages {
			msgs[i] = dispatch.Message{ID: m.ID, Body: unquote(m.Body)}
			if msgs[i].ID == "" {
				msgs[i].ID = middleware.GetReqID(r.Context())
			}
		}

		res, err := d.HandleBatch(r.Context(), msgs)
		if err != nil {
			resp := dispatchResponse{
				RecordsProcessed: res.RecordsProcessed,
				Error:            err.Error(),
				FailureKind:      apperr.KindOf(err).String(),
			}
			if len(res.Failures) > 0 {
				resp.MessageID = res.Failures[0].MessageID
			}
			writeJSON(w, statusFor(err), resp)
			return
		}
		writeJSON(w, http.StatusOK, dispatchResponse{RecordsProcessed: res.RecordsProcessed})
	}
}

// unquote accepts a message body given either inline or as a JSON string.
func unquote(body json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return []byte(s)
	}
	return body
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInput:
		return http.StatusUnprocessableEntity
	case apperr.KindAccessDenied, apperr.KindCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
