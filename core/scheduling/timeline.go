package scheduling

import (
	"sort"

	"github.com/shopfloor/shiftplan/core/model"
)

// slot is a candidate placement on a machine. Setup minutes occupy the
// machine immediately before Start.
type slot struct {
	start model.TimeOfDay
	end   model.TimeOfDay
	setup int
}

// timeline tracks one machine's occupancy while a schedule is built. Work is
// appended strictly left to right: the cursor marks the end of the last
// committed job and new work is placed at or after it.
type timeline struct {
	machine    model.Machine
	constraint model.Constraint
	cursor     model.TimeOfDay
	lastType   string
	placed     []model.Assignment
}

func newTimeline(m model.Machine, c model.Constraint, release model.TimeOfDay) *timeline {
	start := c.ShiftStart
	if release > start {
		start = release
	}
	return &timeline{machine: m, constraint: c, cursor: start}
}

// newTimelines builds one timeline per machine, honoring release floors.
func newTimelines(machines []model.Machine, c model.Constraint, release map[string]model.TimeOfDay) map[string]*timeline {
	tls := make(map[string]*timeline, len(machines))
	for _, m := range machines {
		tls[m.ID] = newTimeline(m, c, release[m.ID])
	}
	return tls
}

// place computes the earliest feasible slot for the job without committing
// it. The machine's busy interval, setup included, must not overlap any
// downtime window, and the job must finish before shift end plus overtime.
func (t *timeline) place(j model.Job) (slot, bool) {
	setup := t.constraint.SetupTime(t.lastType, j.ProductType)
	busyStart := t.cursor
	total := setup + j.ProcessingTime

	for {
		busyEnd := busyStart.Add(total)
		moved := false
		for _, w := range t.machine.Downtime {
			if w.Overlaps(busyStart, busyEnd) {
				busyStart = w.End
				moved = true
				break
			}
		}
		if !moved {
			if busyEnd > t.constraint.LatestEnd() {
				return slot{}, false
			}
			return slot{start: busyStart.Add(setup), end: busyEnd, setup: setup}, true
		}
	}
}

// commit records the slot on the timeline.
func (t *timeline) commit(j model.Job, s slot) {
	t.placed = append(t.placed, model.Assignment{
		JobID:     j.ID,
		MachineID: t.machine.ID,
		Start:     s.start,
		End:       s.end,
	})
	t.cursor = s.end
	t.lastType = j.ProductType
}

type placement struct {
	machineID string
	s         slot
}

// bestSlot finds, among the job's compatible machines, the one whose queue
// finishes the job earliest. Ties break on the lower machine id. The second
// return distinguishes "no compatible machine" (reason ReasonNoMachine or
// ReasonUnknownMachine) from "no capacity".
func bestSlot(j model.Job, tls map[string]*timeline) (placement, string) {
	options := append([]string(nil), j.MachineOptions...)
	sort.Strings(options)

	compatible := false
	known := false
	var best placement
	found := false
	for _, id := range options {
		tl, ok := tls[id]
		if !ok {
			continue
		}
		known = true
		if !tl.machine.CanProduce(j.ProductType) {
			continue
		}
		compatible = true
		s, ok := tl.place(j)
		if !ok {
			continue
		}
		if !found || s.end < best.s.end {
			best = placement{machineID: id, s: s}
			found = true
		}
	}
	if found {
		return best, ""
	}
	switch {
	case !known:
		return placement{}, ReasonUnknownMachine
	case !compatible:
		return placement{}, ReasonNoMachine
	default:
		return placement{}, ReasonNoCapacity
	}
}

// assignInOrder runs the shared earliest-available-slot loop over jobs in the
// given order, committing each placement into the timelines and collecting
// the result into a fresh schedule.
func assignInOrder(jobs []model.Job, tls map[string]*timeline) *model.Schedule {
	s := model.NewSchedule()
	for _, j := range jobs {
		if err := j.Validate(); err != nil {
			s.MarkUnassigned(j.ID, ReasonInvalidInput+": "+err.Error())
			continue
		}
		best, reason := bestSlot(j, tls)
		if reason != "" {
			s.MarkUnassigned(j.ID, reason)
			continue
		}
		tl := tls[best.machineID]
		tl.commit(j, best.s)
		s.Add(tl.placed[len(tl.placed)-1])
	}
	return s
}
