package compress

import (
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the compression counters, labeled by method. A nil *Metrics
// discards all observations.
type Metrics struct {
	// BytesIn counts raw payload bytes handed to a codec.
	BytesIn *prometheus.CounterVec
	// BytesOut counts compressed bytes produced by a codec.
	BytesOut *prometheus.CounterVec
	// Fallbacks counts payloads stored raw because compression did not help.
	Fallbacks *prometheus.CounterVec
}

// NewMetrics creates unregistered counters under namespace. Register them
// with Collectors.
func NewMetrics(namespace string) *Metrics {
	labels := []string{"method"}

	return &Metrics{
		BytesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compress",
			Name:      "bytes_in_total",
			Help:      "Raw payload bytes handed to a compression codec.",
		}, labels),
		BytesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compress",
			Name:      "bytes_out_total",
			Help:      "Compressed bytes produced by a compression codec.",
		}, labels),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compress",
			Name:      "fallbacks_total",
			Help:      "Payloads stored raw because compression was ineffective.",
		}, labels),
	}
}

// Collectors returns the counters for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.BytesIn, m.BytesOut, m.Fallbacks}
}

func (m *Metrics) observe(method format.CompressionMethod, in, out int) {
	if m == nil {
		return
	}
	label := method.String()
	m.BytesIn.WithLabelValues(label).Add(float64(in))
	m.BytesOut.WithLabelValues(label).Add(float64(out))
}

func (m *Metrics) fallback(method format.CompressionMethod) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(method.String()).Inc()
}
