// Package metrics defines the observability interfaces of the optimization
// pipeline. Sink implementations live in infra/metrics.
package metrics

import "time"

// RunResult captures one strategy evaluation inside an optimization run.
type RunResult struct {
	SessionID      string
	Strategy       string
	Verdict        string
	Selected       bool
	Tardiness      int
	SetupMinutes   int
	SwitchCount    int
	ImbalancePct   float64
	AssignedJobs   int
	UnassignedJobs int
	Duration       time.Duration
	Time           time.Time
}

// RunRecorder persists strategy evaluations for observability purposes.
type RunRecorder interface {
	RecordOptimizationRun(results []RunResult) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordOptimizationRun([]RunResult) error { return nil }

// Config selects and parameterizes the metric sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled" yaml:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port" yaml:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled" yaml:"influx_enabled"`
	InfluxURL         string `json:"influx_url" yaml:"influx_url"`
	InfluxToken       string `json:"influx_token" yaml:"influx_token"`
	InfluxOrg         string `json:"influx_org" yaml:"influx_org"`
	InfluxBucket      string `json:"influx_bucket" yaml:"influx_bucket"`
}
