package mutation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	mutationsTotal *prometheus.CounterVec
)

// RegisterMetrics registers the mutation collectors once. A nil registerer
// means prometheus.DefaultRegisterer.
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metricsOnce.Do(func() {
		mutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelit_mutations_total",
			Help: "Mutations dispatched by the console, by method and outcome",
		}, []string{"method", "outcome"})
		reg.MustRegister(mutationsTotal)
	})
}

func countMutation(method, outcome string) {
	if mutationsTotal != nil {
		mutationsTotal.WithLabelValues(method, outcome).Inc()
	}
}
