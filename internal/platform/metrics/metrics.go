package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds ledger-wide transaction metrics.
type Metrics struct {
	TransactionsCommitted  *prometheus.CounterVec
	TransactionsRolledBack *prometheus.CounterVec
	TransactionDuration    prometheus.Histogram
	EventsPublished        prometheus.Counter
}

// New creates and registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		TransactionsCommitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyledger_transactions_committed_total",
			Help: "Total number of committed ledger transactions by operation",
		}, []string{"operation"}),
		TransactionsRolledBack: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyledger_transactions_rolled_back_total",
			Help: "Total number of rolled back ledger transactions by operation",
		}, []string{"operation"}),
		TransactionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "keyledger_transaction_duration_seconds",
			Help:    "Duration of top-level ledger transactions including event flush",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_events_published_total",
			Help: "Total number of ledger events flushed to the sink",
		}),
	}
}

// IncrementCommitted records a committed transaction.
func (m *Metrics) IncrementCommitted(operation string) {
	m.TransactionsCommitted.WithLabelValues(operation).Inc()
}

// IncrementRolledBack records a rolled back transaction.
func (m *Metrics) IncrementRolledBack(operation string) {
	m.TransactionsRolledBack.WithLabelValues(operation).Inc()
}

// ObserveTransaction records the duration of a top-level transaction.
// Call with time.Now() at the start of the transaction.
func (m *Metrics) ObserveTransaction(start time.Time) {
	m.TransactionDuration.Observe(time.Since(start).Seconds())
}

// AddEventsPublished records flushed events.
func (m *Metrics) AddEventsPublished(n int) {
	m.EventsPublished.Add(float64(n))
}
