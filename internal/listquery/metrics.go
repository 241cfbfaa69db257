package listquery

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	staleResponses *prometheus.CounterVec
)

// RegisterMetrics registers the list collectors once. A nil registerer
// means prometheus.DefaultRegisterer.
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metricsOnce.Do(func() {
		staleResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelit_list_stale_responses_total",
			Help: "List responses discarded because a newer request was already applied",
		}, []string{"path"})
		reg.MustRegister(staleResponses)
	})
}

func countStale(path string) {
	if staleResponses != nil {
		staleResponses.WithLabelValues(path).Inc()
	}
}
