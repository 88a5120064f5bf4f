package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the sospeso module.
type Metrics struct {
	// Command outcomes by command and result ("ok" or the error code)
	CommandOutcome *prometheus.CounterVec

	// Command latency by command, store round-trip included
	CommandLatency *prometheus.HistogramVec

	// Issued voucher value in KRW
	IssuedAmount prometheus.Counter
}

// New creates a Metrics instance with all sospeso metrics registered.
func New() *Metrics {
	return &Metrics{
		CommandOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sospeso_command_outcomes_total",
			Help: "Total voucher command outcomes by command and result",
		}, []string{"command", "result"}), // command: "issue", "apply", "approve", "reject", "consume"

		CommandLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sospeso_command_duration_seconds",
			Help:    "Duration of voucher commands including the store round-trip",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"command"}),

		IssuedAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sospeso_issued_amount_krw_total",
			Help: "Total paid amount across issued vouchers, in KRW",
		}),
	}
}

// IncrementOutcome records a command outcome. All methods tolerate a nil
// receiver so metrics stay optional in tests.
func (m *Metrics) IncrementOutcome(command, result string) {
	if m != nil {
		m.CommandOutcome.WithLabelValues(command, result).Inc()
	}
}

// ObserveCommandLatency records how long one command took end to end.
func (m *Metrics) ObserveCommandLatency(command string, d time.Duration) {
	if m != nil {
		m.CommandLatency.WithLabelValues(command).Observe(d.Seconds())
	}
}

// AddIssuedAmount records the paid amount of a successful issuance.
func (m *Metrics) AddIssuedAmount(amount int64) {
	if m != nil {
		m.IssuedAmount.Add(float64(amount))
	}
}
