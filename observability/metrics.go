package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the Prometheus instruments exported by the RPC surface.
type Metrics struct {
	Requests *prometheus.CounterVec
	Events   prometheus.Counter
}

// NewMetrics builds and registers the ledger instruments against the supplied
// registerer. Passing nil uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mctoken",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Dispatched RPC operations by method and outcome.",
		}, []string{"method", "outcome"}),
		Events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mctoken",
			Subsystem: "ledger",
			Name:      "events_total",
			Help:      "Ledger events emitted since process start.",
		}),
	}
	reg.MustRegister(m.Requests, m.Events)
	return m
}

// ObserveRequest records one dispatched method call.
func (m *Metrics) ObserveRequest(method string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Requests.WithLabelValues(method, outcome).Inc()
}
