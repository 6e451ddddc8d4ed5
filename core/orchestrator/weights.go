package orchestrator

import (
	"fmt"

	"github.com/shopfloor/shiftplan/core/model"
)

// Weights parameterize the selection objective. All three must be
// non-negative.
type Weights struct {
	Tardiness float64 `json:"tardiness" yaml:"tardiness"`
	Setup     float64 `json:"setup" yaml:"setup"`
	Balance   float64 `json:"balance" yaml:"balance"`
}

// DefaultWeights weighs the three objectives equally.
func DefaultWeights() Weights { return Weights{Tardiness: 1, Setup: 1, Balance: 1} }

// SetDefaults treats an all-zero value as unspecified and replaces it with
// the defaults. An explicit zero for a single weight is preserved.
func (w *Weights) SetDefaults() {
	if w.Tardiness == 0 && w.Setup == 0 && w.Balance == 0 {
		*w = DefaultWeights()
	}
}

// Validate rejects negative weights.
func (w Weights) Validate() error {
	if w.Tardiness < 0 || w.Setup < 0 || w.Balance < 0 {
		return fmt.Errorf("objective weights must not be negative")
	}
	return nil
}

// Cost computes the weighted objective for a candidate's KPIs. Lower is
// better.
func (w Weights) Cost(k model.KPI) float64 {
	return w.Tardiness*float64(k.TotalTardiness) +
		w.Setup*float64(k.TotalSetupTime) +
		w.Balance*k.ImbalancePct
}
