package simulation

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the batch runner collectors.
type Metrics struct {
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram
	PeakSumRate prometheus.Gauge
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ris_simulation_runs_total",
		Help: "Number of Monte Carlo runs, labeled by outcome.",
	}, []string{"outcome"})
	runs, err := register(reg, runs, "ris_simulation_runs_total")
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ris_simulation_run_duration_seconds",
		Help:    "Wall time of a single Monte Carlo run.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}), "ris_simulation_run_duration_seconds")
	if err != nil {
		return nil, err
	}
	peak, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ris_simulation_peak_sum_rate",
		Help: "Highest averaged sum rate of the last batch, in bit/s/Hz.",
	}), "ris_simulation_peak_sum_rate")
	if err != nil {
		return nil, err
	}
	return &Metrics{Runs: runs, RunDuration: duration, PeakSumRate: peak}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return c, err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return existing, nil
	}
	return c, nil
}
