package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegistryMetrics exposes registry-wide gauges refreshed by the scheduler.
type RegistryMetrics struct {
	total   prometheus.Gauge
	active  prometheus.Gauge
	expired prometheus.Gauge
	revenue prometheus.Gauge
	byType  *prometheus.GaugeVec
}

func NewRegistryMetrics() *RegistryMetrics {
	return NewRegistryMetricsWith(prometheus.DefaultRegisterer)
}

// NewRegistryMetricsWith registers the gauges on reg instead of the default
// registerer, so independent instances can coexist in one process.
func NewRegistryMetricsWith(reg prometheus.Registerer) *RegistryMetrics {
	return newRegistryMetrics(reg)
}

func newRegistryMetrics(reg prometheus.Registerer) *RegistryMetrics {
	factory := promauto.With(reg)
	return &RegistryMetrics{
		total: factory.NewGauge(prometheus.GaugeOpts{
			Name: "keyforge_keys_total",
			Help: "Total number of issued keys.",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "keyforge_keys_active",
			Help: "Keys that are active and unexpired.",
		}),
		expired: factory.NewGauge(prometheus.GaugeOpts{
			Name: "keyforge_keys_expired",
			Help: "Keys whose expiry has passed.",
		}),
		revenue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "keyforge_revenue_total",
			Help: "Sum of the price of all issued keys.",
		}),
		byType: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keyforge_keys_by_type",
			Help: "Issued keys grouped by key type.",
		}, []string{"key_type"}),
	}
}

func (m *RegistryMetrics) SetTotals(total, active, expired int64, revenue float64) {
	if m == nil {
		return
	}
	m.total.Set(float64(total))
	m.active.Set(float64(active))
	m.expired.Set(float64(expired))
	m.revenue.Set(revenue)
}

func (m *RegistryMetrics) SetTypeCount(keyType string, count int64) {
	if m == nil {
		return
	}
	m.byType.WithLabelValues(keyType).Set(float64(count))
}
