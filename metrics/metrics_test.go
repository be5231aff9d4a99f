package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCounters(t *testing.T) {
	m := New()
	m.Recommendation(OutcomeOK)
	m.Recommendation(OutcomeOK)
	m.Recommendation(OutcomeError)
	m.ModelTrained()
	m.Notification("sms", true)
	m.Notification("sms", false)
	m.LedgerAudited(4, false)

	body := scrape(t, m)
	assert.Contains(t, body, `farmeasy_recommendations_total{outcome="ok"} 2`)
	assert.Contains(t, body, `farmeasy_recommendations_total{outcome="error"} 1`)
	assert.Contains(t, body, "farmeasy_model_trainings_total 1")
	assert.Contains(t, body, `farmeasy_notifications_total{channel="sms",outcome="failed"} 1`)
	assert.Contains(t, body, `farmeasy_notifications_total{channel="sms",outcome="sent"} 1`)
	assert.Contains(t, body, "farmeasy_ledger_height 4")
	assert.Contains(t, body, "farmeasy_ledger_chain_valid 0")

	m.LedgerAudited(5, true)
	assert.Contains(t, scrape(t, m), "farmeasy_ledger_chain_valid 1")
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/ledger/verify/{hash}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	for _, h := range []string{"aa", "bb"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ledger/verify/"+h, nil))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `farmeasy_http_request_duration_seconds_count{method="GET",route="/api/ledger/verify/{hash}",status="404"} 2`)
	assert.False(t, strings.Contains(body, `route="/api/ledger/verify/aa"`))
}
