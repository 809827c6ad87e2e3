package metrics

import "github.com/prometheus/client_golang/prometheus"

// FetchMetrics counts per-source fetch outcomes and order volume.
type FetchMetrics struct {
	orders   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewFetchMetrics registers the fetch metrics on the provided registerer.
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	if reg == nil {
		return &FetchMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_fetched_total",
		Help: "Orders returned by each upstream source.",
	}, []string{"source"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "source_fetch_failures_total",
		Help: "Failed fetch attempts per upstream source.",
	}, []string{"source"})
	reg.MustRegister(orders, failures)
	return &FetchMetrics{orders: orders, failures: failures}
}

// AddOrders records how many orders a source returned in one fetch.
func (m *FetchMetrics) AddOrders(source string, count int) {
	if m == nil || m.orders == nil || count < 0 {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(source)).Add(float64(count))
}

// IncFailure records one failed fetch for the source.
func (m *FetchMetrics) IncFailure(source string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(source)).Inc()
}
