package service

import (
	"context"
	"time"

	"grant-assistant-be/pkg/engine/followup"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auto-registered on the default registry, served at /metrics
var (
	interviewsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "grant_assistant",
		Subsystem: "interview",
		Name:      "started_total",
		Help:      "Interviews started.",
	})

	interviewsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "grant_assistant",
		Subsystem: "interview",
		Name:      "completed_total",
		Help:      "Interviews that reached a submittable terminal state.",
	})

	// Labels:
	//   - action: deep_dive, flag_critical_issue, flag_high_priority_issue, suggest_improvement, proceed
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grant_assistant",
			Subsystem: "interview",
			Name:      "turns_total",
			Help:      "Evaluated turns by emitted action.",
		},
		[]string{"action"},
	)

	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "grant_assistant",
		Subsystem: "interview",
		Name:      "turn_duration_seconds",
		Help:      "Time spent evaluating one turn, deep-dive generation included.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 30},
	})

	// Labels:
	//   - outcome: some, none, failure
	deepDiveRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grant_assistant",
			Subsystem: "deep_dive",
			Name:      "requests_total",
			Help:      "Deep-dive generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	deepDiveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "grant_assistant",
		Subsystem: "deep_dive",
		Name:      "duration_seconds",
		Help:      "Duration of deep-dive generation requests.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	})
)

// instrumentedSource records outcome and latency of deep-dive generation
type instrumentedSource struct {
	inner followup.Source
}

// InstrumentSource wraps src with deep-dive metrics
func InstrumentSource(src followup.Source) followup.Source {
	return &instrumentedSource{inner: src}
}

func (s *instrumentedSource) Generate(ctx context.Context, req followup.Request) followup.Result {
	start := time.Now()
	res := s.inner.Generate(ctx, req)
	deepDiveDuration.Observe(time.Since(start).Seconds())
	deepDiveRequests.WithLabelValues(res.Outcome.String()).Inc()
	return res
}
