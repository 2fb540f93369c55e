// Package metrics holds the Prometheus collectors for invitation delivery.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Send outcomes.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics records dispatch activity. A nil *Metrics is a no-op.
type Metrics struct {
	sends    *prometheus.CounterVec
	dispatch *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partyweaver_invitation_sends_total",
			Help: "Invitation send attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		dispatch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "partyweaver_invitation_dispatch_seconds",
			Help:    "Time spent dispatching one invitation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
	}
}

// ObserveSend counts one channel attempt.
func (m *Metrics) ObserveSend(channel, outcome string) {
	if m == nil {
		return
	}
	m.sends.WithLabelValues(channel, outcome).Inc()
}

// ObserveDispatch records the latency of one dispatch. result is "ok" or an error kind.
func (m *Metrics) ObserveDispatch(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatch.WithLabelValues(result).Observe(d.Seconds())
}
