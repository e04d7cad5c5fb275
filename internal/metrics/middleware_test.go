package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func opsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(OpsMiddleware())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/degraded", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Get("/implicit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func TestOpsMiddleware_RecordsStatus(t *testing.T) {
	r := opsRouter()

	tests := []struct {
		path   string
		status string
	}{
		{"/healthz", "200"},
		{"/degraded", "503"},
		{"/implicit", "200"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(opsRequestsTotal.WithLabelValues("GET", tc.path, tc.status))

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest("GET", tc.path, http.NoBody))

			after := testutil.ToFloat64(opsRequestsTotal.WithLabelValues("GET", tc.path, tc.status))
			if after-before != 1 {
				t.Errorf("requests_total delta for %s = %v, want 1", tc.path, after-before)
			}
		})
	}

	if testutil.CollectAndCount(opsRequestDuration) == 0 {
		t.Error("expected ops request duration observations")
	}
}

func TestOpsMiddleware_UnmatchedRoute(t *testing.T) {
	r := opsRouter()
	before := testutil.ToFloat64(opsRequestsTotal.WithLabelValues("GET", "unknown", "404"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/nope", http.NoBody))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	after := testutil.ToFloat64(opsRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	if after-before != 1 {
		t.Errorf("unknown route delta = %v, want 1", after-before)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	if got := routeLabel(httptest.NewRequest("GET", "/metrics", http.NoBody)); got != "unknown" {
		t.Errorf("routeLabel without chi context = %q, want unknown", got)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}
