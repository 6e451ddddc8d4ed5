// Package app wires the configuration into a ready-to-use planning service.
package app

import (
	"context"
	"fmt"

	"github.com/shopfloor/shiftplan/config"
	"github.com/shopfloor/shiftplan/core/advisory"
	"github.com/shopfloor/shiftplan/core/model"
	"github.com/shopfloor/shiftplan/core/orchestrator"
	"github.com/shopfloor/shiftplan/infra/logger"
	"github.com/shopfloor/shiftplan/infra/metrics"
)

// Service bundles the orchestration pipeline with the configured machine
// park and shift constraint.
type Service struct {
	Pipeline   *orchestrator.Pipeline
	Machines   []model.Machine
	Constraint model.Constraint
	Weights    orchestrator.Weights

	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	logg := logger.New("service")

	machines, err := cfg.MachinePark()
	if err != nil {
		return nil, fmt.Errorf("machine park: %w", err)
	}
	constraint, err := cfg.Constraint()
	if err != nil {
		return nil, fmt.Errorf("shift constraint: %w", err)
	}
	sink, err := metrics.FromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metric sinks: %w", err)
	}

	annotator := advisory.NewTimeBoxed(advisory.KPIText{}, 0, logg)
	pipeline := orchestrator.New(logg, sink, annotator, cfg.Balance)

	return &Service{
		Pipeline:    pipeline,
		Machines:    machines,
		Constraint:  constraint,
		Weights:     cfg.Weights,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// NewSession opens an isolated planning session for the given job list.
func (s *Service) NewSession(jobs []model.Job) *orchestrator.Session {
	return orchestrator.NewSession(jobs, s.Machines, s.Constraint, s.Weights)
}

// StartMetricsServer exposes the Prometheus endpoint when enabled. It blocks
// until the context is canceled.
func (s *Service) StartMetricsServer(ctx context.Context) {
	if !s.promEnabled {
		return
	}
	if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
		s.log.Errorf("prom server: %v", err)
	}
}
