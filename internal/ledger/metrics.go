package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Intents   *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	Confirmed prometheus.Counter
	Retries   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Intents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surety_ledger_intents_total",
			Help: "Ledger intents recorded, by action",
		}, []string{"action"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surety_ledger_collaborator_failures_total",
			Help: "Ledger collaborator calls that failed, by action",
		}, []string{"action"}),
		Confirmed: f.NewCounter(prometheus.CounterOpts{
			Name: "surety_ledger_intents_confirmed_total",
			Help: "Ledger intents confirmed by the chain",
		}),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Name: "surety_ledger_intent_retries_total",
			Help: "Failed ledger intents re-dispatched",
		}),
	}
}

func (m *Metrics) incIntent(a Action) {
	if m != nil {
		m.Intents.WithLabelValues(string(a)).Inc()
	}
}

func (m *Metrics) incFailure(a Action) {
	if m != nil {
		m.Failures.WithLabelValues(string(a)).Inc()
	}
}

func (m *Metrics) incConfirmed() {
	if m != nil {
		m.Confirmed.Inc()
	}
}

func (m *Metrics) incRetry() {
	if m != nil {
		m.Retries.Inc()
	}
}
