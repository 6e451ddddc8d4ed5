package orchestrator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shopfloor/shiftplan/core/model"
)

// Session is the explicit planning context for one caller: the job set, its
// own deep copy of the machine and downtime state, the constraint and the
// objective weights. Concurrent sessions never share mutable state, so two
// planners can run side by side without locking.
type Session struct {
	ID         string
	Jobs       []model.Job
	Machines   []model.Machine
	Constraint model.Constraint
	Weights    Weights
	// InvalidInputs are records rejected at ingestion. They are carried into
	// every produced schedule as unassigned jobs so no input is ever
	// silently dropped.
	InvalidInputs []model.UnassignedJob
}

// NewSession creates an isolated session over copies of the given state.
func NewSession(jobs []model.Job, machines []model.Machine, c model.Constraint, w Weights) *Session {
	w.SetDefaults()
	return &Session{
		ID:         uuid.NewString(),
		Jobs:       append([]model.Job(nil), jobs...),
		Machines:   model.CloneMachines(machines),
		Constraint: c,
		Weights:    w,
	}
}

// RejectInput records an input row that failed validation.
func (s *Session) RejectInput(jobID, reason string) {
	s.InvalidInputs = append(s.InvalidInputs, model.UnassignedJob{JobID: jobID, Reason: reason})
}

// AddDowntime registers a downtime window on one of the session's machines.
// Call it between optimization runs, then trigger Reoptimize.
func (s *Session) AddDowntime(machineID string, w model.DowntimeWindow) error {
	for i := range s.Machines {
		if s.Machines[i].ID == machineID {
			return s.Machines[i].AddDowntime(w)
		}
	}
	return fmt.Errorf("unknown machine %s", machineID)
}

// RemoveDowntime deletes the window starting at the given time.
func (s *Session) RemoveDowntime(machineID string, start model.TimeOfDay) bool {
	for i := range s.Machines {
		if s.Machines[i].ID == machineID {
			return s.Machines[i].RemoveDowntime(start)
		}
	}
	return false
}

// productTypes returns the distinct product types of the session's jobs.
func (s *Session) productTypes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, j := range s.Jobs {
		if !seen[j.ProductType] {
			seen[j.ProductType] = true
			out = append(out, j.ProductType)
		}
	}
	return out
}
