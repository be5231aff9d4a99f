// Package metrics owns the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "farmeasy"

// Recommendation outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

type Metrics struct {
	reg *prometheus.Registry

	httpDuration    *prometheus.HistogramVec
	recommendations *prometheus.CounterVec
	trainings       prometheus.Counter
	ledgerHeight    prometheus.Gauge
	chainValid      prometheus.Gauge
	notifications   *prometheus.CounterVec
}

// New registers every collector on a private registry, so tests can build
// as many instances as they like.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Crop recommendation requests by outcome.",
		}, []string{"outcome"}),
		trainings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_trainings_total",
			Help:      "Completed crop model trainings.",
		}),
		ledgerHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_height",
			Help:      "Number of blocks in the trade ledger, genesis included.",
		}),
		chainValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_chain_valid",
			Help:      "1 when the last ledger audit passed.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpDuration,
		m.recommendations,
		m.trainings,
		m.ledgerHeight,
		m.chainValid,
		m.notifications,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware records request latency. The route label is the chi pattern,
// so ids in the path do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Recommendation(outcome string) {
	m.recommendations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ModelTrained() { m.trainings.Inc() }

// LedgerAudited publishes the result of a chain audit.
func (m *Metrics) LedgerAudited(height int, valid bool) {
	m.ledgerHeight.Set(float64(height))
	if valid {
		m.chainValid.Set(1)
	} else {
		m.chainValid.Set(0)
	}
}

func (m *Metrics) LedgerHeight(height int) { m.ledgerHeight.Set(float64(height)) }

// Notification matches the notify.Observe callback.
func (m *Metrics) Notification(channel string, ok bool) {
	outcome := "failed"
	if ok {
		outcome = "sent"
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
}
