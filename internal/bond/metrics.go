package bond

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers lifecycle transitions and the check-in and wage paths.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CheckIns          *prometheus.CounterVec
	WagesReleased     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surety_bond_operations_total",
			Help: "Bond lifecycle operations by operation and outcome code",
		}, []string{"operation", "outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "surety_bond_operation_duration_seconds",
			Help:    "Duration of bond lifecycle operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		CheckIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surety_check_ins_total",
			Help: "Check-in attempts by result",
		}, []string{"result"}),
		WagesReleased: f.NewCounter(prometheus.CounterOpts{
			Name: "surety_wages_released_total",
			Help: "Weekly wages released",
		}),
	}
}

func (m *Metrics) observe(op, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) incCheckIn(result string) {
	if m != nil {
		m.CheckIns.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) incWageReleased() {
	if m != nil {
		m.WagesReleased.Inc()
	}
}
