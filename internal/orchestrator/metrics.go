package orchestrator

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as metric label values.
const (
	OutcomeOK      = "ok"
	OutcomeRefused = "refused"
	OutcomeFailed  = "failed"
)

const runsMetric = "agentops_pipeline_runs_total"

// Metrics records pipeline activity on a caller-supplied registry. A nil
// *Metrics records nothing.
type Metrics struct {
	runs         *prometheus.CounterVec
	augmentation *prometheus.CounterVec
	confidence   prometheus.Histogram
	duration     *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: strategy (data-analysis, ..., none), outcome (ok, refused, failed)
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentops",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by routed strategy and outcome",
		}, []string{"strategy", "outcome"}),
		// Labels: result (applied, fallback)
		augmentation: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentops",
			Subsystem: "pipeline",
			Name:      "augmentations_total",
			Help:      "Generative augmentation attempts by result",
		}, []string{"result"}),
		confidence: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentops",
			Subsystem: "pipeline",
			Name:      "report_confidence",
			Help:      "Final confidence of validated reports",
			Buckets:   prometheus.LinearBuckets(0.45, 0.05, 11),
		}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentops",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60},
		}, []string{"strategy"}),
	}
}

func (m *Metrics) observeRun(strategy, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(strategy, outcome).Inc()
	m.duration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

func (m *Metrics) observeConfidence(c float64) {
	if m == nil {
		return
	}
	m.confidence.Observe(c)
}

func (m *Metrics) observeAugmentation(applied bool) {
	if m == nil {
		return
	}
	result := "fallback"
	if applied {
		result = "applied"
	}
	m.augmentation.WithLabelValues(result).Inc()
}

// RunCount is one strategy/outcome cell of the runs counter.
type RunCount struct {
	Strategy string
	Outcome  string
	Count    int
}

// SummarizeRuns reads the runs counter back from g, sorted by strategy then outcome.
func SummarizeRuns(g prometheus.Gatherer) ([]RunCount, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	var out []RunCount
	for _, mf := range families {
		if mf.GetName() != runsMetric {
			continue
		}
		for _, m := range mf.GetMetric() {
			rc := RunCount{Count: int(m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "strategy":
					rc.Strategy = lp.GetValue()
				case "outcome":
					rc.Outcome = lp.GetValue()
				}
			}
			out = append(out, rc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strategy != out[j].Strategy {
			return out[i].Strategy < out[j].Strategy
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out, nil
}
