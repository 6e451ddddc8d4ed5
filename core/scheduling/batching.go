package scheduling

import (
	"fmt"
	"sort"

	"github.com/shopfloor/shiftplan/core/model"
)

// Batching groups jobs of the same product type to cut changeover setups.
// Rush jobs keep precedence: they are scheduled by ascending due time before
// any normal job, so batching can never push a rush job past a slot that
// would have met its deadline.
type Batching struct{}

func (Batching) Name() string { return "batching" }

// Build reorders the job set and then runs the same earliest-available-slot
// assignment as the baseline. Product-type groups containing rush jobs come
// first, ordered by the earliest rush due time; groups without rush jobs
// follow, ordered by their earliest due time. Ties always break on the lower
// job id.
func (Batching) Build(in Input) (*model.Schedule, string) {
	tls := newTimelines(in.Machines, in.Constraint, in.Release)
	ordered := batchOrder(in.Jobs)
	s := assignInOrder(ordered, tls)

	rush := 0
	for _, j := range in.Jobs {
		if j.IsRush() {
			rush++
		}
	}
	summary := fmt.Sprintf("Batching grouped %d jobs by product type (%d rush jobs scheduled first by due time) to minimize setup switches.",
		len(in.Jobs), rush)
	return s, summary
}

// batchOrder returns the jobs reordered for batched assignment: rush jobs by
// (due time, id), then normal jobs grouped by product type.
func batchOrder(jobs []model.Job) []model.Job {
	var rush, normal []model.Job
	for _, j := range jobs {
		if j.IsRush() {
			rush = append(rush, j)
		} else {
			normal = append(normal, j)
		}
	}
	sort.Slice(rush, func(i, k int) bool {
		if rush[i].DueTime != rush[k].DueTime {
			return rush[i].DueTime < rush[k].DueTime
		}
		return rush[i].ID < rush[k].ID
	})

	ordered := append([]model.Job(nil), rush...)
	for _, group := range typeGroups(jobs) {
		for _, j := range group.jobs {
			if !j.IsRush() {
				ordered = append(ordered, j)
			}
		}
	}
	return ordered
}

type typeGroup struct {
	productType string
	rushDue     model.TimeOfDay // earliest rush due time, valid when hasRush
	hasRush     bool
	earliestDue model.TimeOfDay
	jobs        []model.Job
}

// typeGroups partitions jobs by product type and orders the partitions:
// partitions holding a rush job first by that rush job's due time, the rest
// after, by their earliest due time.
func typeGroups(jobs []model.Job) []typeGroup {
	byType := make(map[string]*typeGroup)
	for _, j := range jobs {
		g, ok := byType[j.ProductType]
		if !ok {
			g = &typeGroup{productType: j.ProductType, earliestDue: j.DueTime}
			byType[j.ProductType] = g
		}
		if j.DueTime < g.earliestDue {
			g.earliestDue = j.DueTime
		}
		if j.IsRush() && (!g.hasRush || j.DueTime < g.rushDue) {
			g.hasRush = true
			g.rushDue = j.DueTime
		}
		g.jobs = append(g.jobs, j)
	}

	groups := make([]typeGroup, 0, len(byType))
	for _, g := range byType {
		sort.Slice(g.jobs, func(i, k int) bool {
			if g.jobs[i].DueTime != g.jobs[k].DueTime {
				return g.jobs[i].DueTime < g.jobs[k].DueTime
			}
			return g.jobs[i].ID < g.jobs[k].ID
		})
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, k int) bool {
		a, b := groups[i], groups[k]
		if a.hasRush != b.hasRush {
			return a.hasRush
		}
		if a.hasRush {
			if a.rushDue != b.rushDue {
				return a.rushDue < b.rushDue
			}
			return a.productType < b.productType
		}
		if a.earliestDue != b.earliestDue {
			return a.earliestDue < b.earliestDue
		}
		return a.productType < b.productType
	})
	return groups
}
