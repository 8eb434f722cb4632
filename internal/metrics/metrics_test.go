package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveBackendCall(t *testing.T) {
	before := testutil.ToFloat64(backendRequestsTotal.WithLabelValues("GET /api/truck/getall", "ok"))

	ObserveBackendCall("GET /api/truck/getall", "ok", 20*time.Millisecond)

	after := testutil.ToFloat64(backendRequestsTotal.WithLabelValues("GET /api/truck/getall", "ok"))
	assert.Equal(t, before+1, after)
}

func TestNewServer_Healthz(t *testing.T) {
	srv := NewServer(":0")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNewServer_Metrics(t *testing.T) {
	ObserveBackendCall("GET /api/branch/getall", "ok", time.Millisecond)
	srv := NewServer(":0")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend_requests_total")
}
