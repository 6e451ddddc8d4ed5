package metrics

import coremetrics "github.com/shopfloor/shiftplan/core/metrics"

// MultiSink fans optimization runs out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.RunRecorder
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.RunRecorder) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOptimizationRun forwards the records to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordOptimizationRun(results []coremetrics.RunResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordOptimizationRun(results); err != nil {
			return err
		}
	}
	return nil
}
