package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for pool operations.
// Tracks key issuance, transfers and value flows across every pool.
type Metrics struct {
	KeysPurchased    prometheus.Counter
	KeysGranted      prometheus.Counter
	KeysTransferred  prometheus.Counter
	KeysCancelled    *prometheus.CounterVec
	RefundsPaid      prometheus.Counter
	FeesCharged      prometheus.Counter
	PoolsCreated     prometheus.Counter
	PoolsDisabled    prometheus.Counter
	PoolsDestroyed   prometheus.Counter
	ReceiverRejected prometheus.Counter
}

// New creates the pool metrics and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		KeysPurchased: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_keys_purchased_total",
			Help: "Total number of paid key purchases and extensions",
		}),
		KeysGranted: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_keys_granted_total",
			Help: "Total number of keys granted by pool owners",
		}),
		KeysTransferred: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_keys_transferred_total",
			Help: "Total number of key transfers",
		}),
		KeysCancelled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyledger_keys_cancelled_total",
			Help: "Total number of cancelled keys by path (self, delegated, owner)",
		}, []string{"path"}),
		RefundsPaid: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_refunds_paid_units_total",
			Help: "Sum of refunds paid out, in settlement units",
		}),
		FeesCharged: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_transfer_fees_units_total",
			Help: "Sum of transfer fees charged, in settlement units",
		}),
		PoolsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_pools_created_total",
			Help: "Total number of pools created through the registry",
		}),
		PoolsDisabled: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_pools_disabled_total",
			Help: "Total number of disabled pools",
		}),
		PoolsDestroyed: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_pools_destroyed_total",
			Help: "Total number of decommissioned pools",
		}),
		ReceiverRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "keyledger_safe_transfer_rejected_total",
			Help: "Total number of safe transfers refused by the recipient",
		}),
	}
}

func (m *Metrics) IncrementPurchased() { m.KeysPurchased.Inc() }

func (m *Metrics) AddGranted(n int) { m.KeysGranted.Add(float64(n)) }

func (m *Metrics) IncrementTransferred() { m.KeysTransferred.Inc() }

// IncrementCancelled records a cancellation. path is self, delegated or owner.
func (m *Metrics) IncrementCancelled(path string) { m.KeysCancelled.WithLabelValues(path).Inc() }

func (m *Metrics) AddRefund(amount *big.Int) { m.RefundsPaid.Add(units(amount)) }

func (m *Metrics) AddFee(amount *big.Int) { m.FeesCharged.Add(units(amount)) }

func (m *Metrics) IncrementCreated() { m.PoolsCreated.Inc() }

func (m *Metrics) IncrementDisabled() { m.PoolsDisabled.Inc() }

func (m *Metrics) IncrementDestroyed() { m.PoolsDestroyed.Inc() }

func (m *Metrics) IncrementReceiverRejected() { m.ReceiverRejected.Inc() }

func units(amount *big.Int) float64 {
	if amount == nil || amount.Sign() <= 0 {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f
}
