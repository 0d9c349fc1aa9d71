// Package metrics exposes the pipeline's Prometheus instrumentation:
// boundary frequency by trigger kind and per-stage latency, grounded on
// longregen-alicia's package-level promauto metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BoundariesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lingua_boundaries_total",
		Help: "Total VAD boundaries handled, by trigger type",
	}, []string{"boundary_type"})

	AsrFilteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lingua_asr_filtered_total",
		Help: "Total ASR outputs rejected by the hallucination filter",
	})

	TranslationDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lingua_translation_dropped_total",
		Help: "Total translations dropped by the quality gate",
	})

	VadFeedbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lingua_vad_feedback_total",
		Help: "Total adaptive VAD feedback adjustments, by kind",
	}, []string{"kind"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lingua_stage_duration_seconds",
		Help:    "Per-stage pipeline latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"stage"})

	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lingua_active_streams",
		Help: "Number of live conversation streams",
	})
)
