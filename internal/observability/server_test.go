package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServer_Probes(t *testing.T) {
	s := NewServer(":0")

	tests := []struct {
		name  string
		path  string
		ready bool
		want  int
	}{
		{"healthz", "/healthz", false, http.StatusOK},
		{"readyz before ready", "/readyz", false, http.StatusServiceUnavailable},
		{"readyz after ready", "/readyz", true, http.StatusOK},
		{"metrics", "/metrics", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetReady(tt.ready)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s: expected %d, got %d", tt.path, tt.want, rec.Code)
			}
		})
	}
}
