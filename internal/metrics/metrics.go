// Package metrics holds the Prometheus collectors of the authenticated client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "expense_client"

// Refresh outcomes.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Metrics struct {
	Refreshes      *prometheus.CounterVec
	Replays        prometheus.Counter
	QueuedRequests prometheus.Counter
	SessionExpired prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg skips registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Refresh calls made to the auth endpoint, by result.",
		}, []string{"result"}),
		Replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replayed_requests_total",
			Help:      "Requests resubmitted with a new access token.",
		}),
		QueuedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queued_requests_total",
			Help:      "Requests that waited for an in-flight refresh.",
		}),
		SessionExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_expired_total",
			Help:      "Terminal refresh failures.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Refreshes, m.Replays, m.QueuedRequests, m.SessionExpired)
	}
	return m
}
