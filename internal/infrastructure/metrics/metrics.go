// Package metrics holds the Prometheus collectors for the notification
// engine. HTTP-level metrics live with the server; these are kept separate
// so the services layer does not depend on the transport.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine collects reconciliation loop metrics.
type Engine struct {
	TicksTotal           prometheus.Counter
	FetchFailuresTotal   prometheus.Counter
	NotificationsEmitted *prometheus.CounterVec
	NotificationsExpired *prometheus.CounterVec
	AlertsTotal          prometheus.Counter
	ActiveLoops          prometheus.Gauge
}

// NewEngine creates and registers the engine collectors.
func NewEngine(reg prometheus.Registerer) *Engine {
	m := &Engine{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atm_reconcile_ticks_total",
			Help: "Total number of reconciliation ticks run",
		}),
		FetchFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atm_reconcile_fetch_failures_total",
			Help: "Total number of ticks whose task fetch failed",
		}),
		NotificationsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atm_notifications_emitted_total",
			Help: "Total number of notifications emitted, by window tag",
		}, []string{"window"}),
		NotificationsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atm_notifications_expired_total",
			Help: "Total number of notifications expired, by window tag",
		}, []string{"window"}),
		AlertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atm_alerts_total",
			Help: "Total number of alert signals sent (one per tick with new notifications)",
		}),
		ActiveLoops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atm_reconciler_active_loops",
			Help: "Number of identifiers with an active reconciliation loop",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.TicksTotal,
			m.FetchFailuresTotal,
			m.NotificationsEmitted,
			m.NotificationsExpired,
			m.AlertsTotal,
			m.ActiveLoops,
		)
	}

	return m
}

// NewNopEngine returns unregistered collectors, for tests.
func NewNopEngine() *Engine {
	return NewEngine(nil)
}
