package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_CountsStatusAndBytes(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("12345"))
	})
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/metrics-test", http.MethodGet, "202"))
	bytesBefore := testutil.ToFloat64(httpResponseBytes.WithLabelValues("/metrics-test"))

	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics-test", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status=%d", rr.Code)
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/metrics-test", http.MethodGet, "202")); got != before+1 {
		t.Fatalf("requests_total = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(httpResponseBytes.WithLabelValues("/metrics-test")); got != bytesBefore+5 {
		t.Fatalf("response_bytes_total = %v, want %v", got, bytesBefore+5)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v, want 0", got)
	}
}

func TestMetricsMiddleware_ImplicitOK(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/implicit", http.MethodGet, "200"))
	MetricsMiddleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/implicit", nil))
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/implicit", http.MethodGet, "200")); got != before+1 {
		t.Fatalf("requests_total = %v, want %v", got, before+1)
	}
}
