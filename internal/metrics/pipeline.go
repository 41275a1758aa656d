package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline records harvest and generation activity. A nil *Pipeline is valid
// and records nothing.
type Pipeline struct {
	harvestRuns        *prometheus.CounterVec
	postsSaved         prometheus.Counter
	stallRefreshes     prometheus.Counter
	generationRequests *prometheus.CounterVec
	generationDuration prometheus.Histogram
}

// NewPipeline registers the pipeline metrics on reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		harvestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "runs_total",
			Help:      "Completed harvest runs by outcome.",
		}, []string{"outcome"}),
		postsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "posts_saved_total",
			Help:      "Posts newly inserted into the store.",
		}),
		stallRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "stall_refreshes_total",
			Help:      "Page refreshes triggered by stalled scrolling.",
		}),
		generationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Generation requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "End-to-end generation latency.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
	}

	for _, c := range []prometheus.Collector{p.harvestRuns, p.postsSaved, p.stallRefreshes, p.generationRequests, p.generationDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Pipeline) HarvestFinished(outcome string) {
	if p == nil {
		return
	}
	p.harvestRuns.WithLabelValues(outcome).Inc()
}

func (p *Pipeline) PostsSaved(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.postsSaved.Add(float64(n))
}

func (p *Pipeline) StallRefresh() {
	if p == nil {
		return
	}
	p.stallRefreshes.Inc()
}

func (p *Pipeline) GenerationFinished(mode, outcome string, elapsed time.Duration) {
	if p == nil {
		return
	}
	p.generationRequests.WithLabelValues(mode, outcome).Inc()
	p.generationDuration.Observe(elapsed.Seconds())
}
