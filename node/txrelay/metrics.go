package txrelay

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the gauge the transaction manager publishes. A nil
// *Metrics is safe to use (every method is a no-op).
type Metrics struct {
	TxStoreSize prometheus.Gauge
}

// NewMetrics constructs and registers the Transaction Manager's metrics
// against reg. Passing nil yields un-registered (but still usable)
// metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TxStoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubin_txrelay_tx_store_size",
			Help: "Number of pending transactions held for relay.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.TxStoreSize)
	}
	return m
}

func (m *Metrics) setTxStoreSize(n int) {
	if m == nil {
		return
	}
	m.TxStoreSize.Set(float64(n))
}
