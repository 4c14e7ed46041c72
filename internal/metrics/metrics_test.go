package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveProvider("brave", 100*time.Millisecond, nil)
	m.ObserveProvider("brave", 200*time.Millisecond, errors.New("down"))
	m.ObserveCompletion(nil)
	m.SetActiveSessions(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerRequests.WithLabelValues("brave", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerRequests.WithLabelValues("brave", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completionRequests.WithLabelValues("success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsActive))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveProvider("brave", time.Second, nil)
		m.ObserveCompletion(errors.New("x"))
		m.SetActiveSessions(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveCompletion(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "miniplex_completion_requests_total")
}
