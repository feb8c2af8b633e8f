package chain

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the gauges/counter the engine publishes.
// All publishing is best-effort: a nil *Metrics is safe to use (every
// method is a no-op), so tests and callers that don't care about metrics
// can omit a registry entirely.
type Metrics struct {
	TipsCount       prometheus.Gauge
	TipHeight       prometheus.Gauge
	HeaderCacheSize prometheus.Counter
	BlockCacheSize  prometheus.Gauge
}

// NewMetrics constructs and registers the Blockchain State's metrics
// against reg. Passing nil yields un-registered (but still usable)
// metrics, useful for tests that don't want a shared global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TipsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubin_chain_tips_count",
			Help: "Number of live header tree tips.",
		}),
		TipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubin_chain_tip_height",
			Help: "Height of the active chain tip.",
		}),
		HeaderCacheSize: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rubin_chain_header_cache_size",
			Help: "Number of headers inserted into the header store.",
		}),
		BlockCacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubin_chain_block_cache_size_bytes",
			Help: "Total wire-serialized size of cached blocks.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.TipsCount, m.TipHeight, m.HeaderCacheSize, m.BlockCacheSize)
	}
	return m
}

func (m *Metrics) setTips(count int) {
	if m == nil {
		return
	}
	m.TipsCount.Set(float64(count))
}

func (m *Metrics) setTipHeight(height uint64) {
	if m == nil {
		return
	}
	m.TipHeight.Set(float64(height))
}

func (m *Metrics) incHeaderCacheSize() {
	if m == nil {
		return
	}
	m.HeaderCacheSize.Inc()
}

func (m *Metrics) setBlockCacheSize(size uint64) {
	if m == nil {
		return
	}
	m.BlockCacheSize.Set(float64(size))
}
