// Package metrics provides the sink implementations for optimization run
// observability: Prometheus, InfluxDB, a fan-out and the no-op fallback.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/shopfloor/shiftplan/core/metrics"
)

// PromSink exposes optimization run outcomes as Prometheus metrics.
type PromSink struct {
	runs       *prometheus.CounterVec
	tardiness  *prometheus.HistogramVec
	imbalance  *prometheus.GaugeVec
	unassigned *prometheus.GaugeVec
}

// NewPromSink registers the run metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.RunRecorder, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.RunRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimization_runs_total",
		Help: "Total number of evaluated strategy runs",
	}, []string{"strategy", "verdict", "selected"})
	tardiness := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_tardiness_minutes",
		Help:    "Total tardiness of an evaluated schedule in minutes",
		Buckets: []float64{0, 15, 30, 60, 120, 240, 480},
	}, []string{"strategy"})
	imbalance := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_imbalance_percent",
		Help: "Machine load imbalance of the latest evaluated schedule",
	}, []string{"strategy"})
	unassigned := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_unassigned_jobs",
		Help: "Unassigned jobs in the latest evaluated schedule",
	}, []string{"strategy"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(tardiness); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			tardiness = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(imbalance); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			imbalance = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(unassigned); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			unassigned = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, tardiness: tardiness, imbalance: imbalance, unassigned: unassigned}, nil
}

// RecordOptimizationRun updates the counters and gauges for each evaluation.
func (s *PromSink) RecordOptimizationRun(results []coremetrics.RunResult) error {
	for _, r := range results {
		s.runs.WithLabelValues(r.Strategy, r.Verdict, strconv.FormatBool(r.Selected)).Inc()
		s.tardiness.WithLabelValues(r.Strategy).Observe(float64(r.Tardiness))
		s.imbalance.WithLabelValues(r.Strategy).Set(r.ImbalancePct)
		s.unassigned.WithLabelValues(r.Strategy).Set(float64(r.UnassignedJobs))
	}
	return nil
}
