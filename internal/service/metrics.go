package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mira",
		Name:      "extraction_total",
		Help:      "Preference extractions by tier and outcome",
	}, []string{"provider", "outcome"})

	generationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mira",
		Name:      "generation_total",
		Help:      "Reply generations by provider and outcome",
	}, []string{"provider", "outcome"})

	pipelineLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mira",
		Name:      "pipeline_duration_seconds",
		Help:      "End-to-end chat pipeline latency",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	}, []string{"intent"})

	matchedListings = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mira",
		Name:      "matched_listings",
		Help:      "Listings surviving the catalog filter per search",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)
