package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitewatch_checks_total",
		Help: "Site checks by resulting status.",
	}, []string{"status"})

	probeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitewatch_probe_failures_total",
		Help: "Failed probes by kind.",
	}, []string{"probe"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitewatch_cycle_duration_seconds",
		Help:    "Duration of a full check cycle.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})

	lastCycle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sitewatch_last_cycle_timestamp_seconds",
		Help: "Unix time of the last completed check cycle.",
	})
)
