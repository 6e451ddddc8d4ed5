package scheduling

import "github.com/shopfloor/shiftplan/core/model"

// Input bundles the immutable data a strategy works on.
type Input struct {
	Jobs       []model.Job
	Machines   []model.Machine
	Constraint model.Constraint
	// Release holds per-machine earliest start floors. It is used when
	// re-optimizing the remainder of a shift: a machine stays blocked until
	// its fixed prefix finishes. A missing entry means the shift start.
	Release map[string]model.TimeOfDay
}

// Strategy builds a schedule for a job set from scratch. Build returns the
// schedule and a short human-readable summary of what the strategy did.
type Strategy interface {
	Name() string
	Build(in Input) (*model.Schedule, string)
}

// Unassigned reasons shared by the strategies.
const (
	ReasonInvalidInput   = "invalid input"
	ReasonNoMachine      = "no compatible machine"
	ReasonNoCapacity     = "no capacity within shift and overtime"
	ReasonUnknownMachine = "unknown machine id"
)
