package generate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// #region metrics
var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammarvae_generations_total",
		Help: "Generation calls by selection mode and outcome",
	}, []string{"mode", "outcome"})

	generationSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grammarvae_generation_steps",
		Help:    "Rules applied per generation call",
		Buckets: []float64{1, 2, 5, 10, 15, 20, 50, 100},
	})

	decodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grammarvae_decode_duration_seconds",
		Help:    "Time spent in the decoder per generation call",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
	})
)

var tracer = otel.Tracer("grammarvae.generate")

const (
	outcomeComplete  = "complete"
	outcomeTruncated = "truncated"
	outcomeError     = "error"
)

// #endregion metrics
