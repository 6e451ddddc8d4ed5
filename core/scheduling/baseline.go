package scheduling

import (
	"fmt"

	"github.com/shopfloor/shiftplan/core/model"
)

// Baseline implements the FIFO reference strategy: jobs are taken in input
// order and each one goes to the compatible machine whose queue finishes it
// earliest. No lookahead, fully deterministic. It doubles as the seed for the
// batching and balancing stages.
type Baseline struct{}

func (Baseline) Name() string { return "baseline" }

// Build places each job in strict input order.
func (Baseline) Build(in Input) (*model.Schedule, string) {
	tls := newTimelines(in.Machines, in.Constraint, in.Release)
	s := assignInOrder(in.Jobs, tls)
	summary := fmt.Sprintf("FIFO baseline placed %d of %d jobs in input order on the earliest available machine.",
		s.AssignedCount(), len(in.Jobs))
	return s, summary
}
