package metrics

import (
	coremetrics "github.com/shopfloor/shiftplan/core/metrics"
)

// FromConfig assembles the sink stack the configuration asks for. With
// nothing enabled it returns the no-op sink, with both Prometheus and Influx
// enabled the records are fanned out.
func FromConfig(cfg coremetrics.Config) (coremetrics.RunRecorder, error) {
	var sinks []coremetrics.RunRecorder
	if cfg.PrometheusEnabled {
		prom, err := NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
