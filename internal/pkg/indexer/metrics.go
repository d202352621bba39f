package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	tipHeight          prometheus.Gauge
	blocksConnected    prometheus.Counter
	blocksDisconnected prometheus.Counter
	operations         *prometheus.CounterVec
}

// NewMetrics creates the indexer collectors and registers them in reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		tipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "addrindex_tip_height",
			Help: "Height of the last block committed to the index.",
		}),
		blocksConnected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "addrindex_blocks_connected_total",
			Help: "Blocks connected to the index.",
		}),
		blocksDisconnected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "addrindex_blocks_disconnected_total",
			Help: "Blocks disconnected from the index.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "addrindex_operations_total",
			Help: "Store operations committed, by module and operation type.",
		}, []string{"module", "type"}),
	}

	for _, c := range []prometheus.Collector{m.tipHeight, m.blocksConnected, m.blocksDisconnected, m.operations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) setTip(height int64) {
	if m == nil {
		return
	}

	m.tipHeight.Set(float64(height))
}

func (m *Metrics) blockConnected() {
	if m == nil {
		return
	}

	m.blocksConnected.Inc()
}

func (m *Metrics) blockDisconnected() {
	if m == nil {
		return
	}

	m.blocksDisconnected.Inc()
}

func (m *Metrics) addOperations(module, opType string, n int) {
	if m == nil || n == 0 {
		return
	}

	m.operations.WithLabelValues(module, opType).Add(float64(n))
}
