package orchestrator

import (
	"context"

	"github.com/shopfloor/shiftplan/core/model"
	"github.com/shopfloor/shiftplan/core/scheduling"
)

// Reoptimize replans a running shift after the session's machine state
// changed, typically after AddDowntime. Assignments of the current schedule
// that finished at or before now are kept verbatim; every other job is
// rescheduled from now onward. Jobs that no longer fit appear as unassigned
// in the result, the returned error covers setup or weight misconfiguration
// only.
func (p *Pipeline) Reoptimize(ctx context.Context, sess *Session, current *model.Schedule, now model.TimeOfDay, mode Mode) (*Result, error) {
	prefix, done := partition(current, now)

	var pending []model.Job
	for _, j := range sess.Jobs {
		if !done[j.ID] {
			pending = append(pending, j)
		}
	}

	// Kept assignments all end at or before now, so every machine becomes
	// available again at now.
	release := make(map[string]model.TimeOfDay)
	for _, m := range sess.Machines {
		release[m.ID] = now
	}

	in := scheduling.Input{
		Jobs:       pending,
		Machines:   sess.Machines,
		Constraint: sess.Constraint,
		Release:    release,
	}
	res, err := p.run(ctx, sess, in, mode, prefix)
	if err != nil {
		return nil, err
	}
	res.Trace = append([]State{StateReoptimizeTriggered}, res.Trace...)
	p.log.Infof("session %s: re-optimized from %s, %d assignments kept", sess.ID, now, len(prefix))
	return res, nil
}

// partition splits a schedule at the cutoff: assignments that end at or
// before it are returned unchanged, their job ids marked done. Work still in
// flight or not yet started is rescheduled.
func partition(s *model.Schedule, now model.TimeOfDay) ([]model.Assignment, map[string]bool) {
	done := make(map[string]bool)
	var prefix []model.Assignment
	if s == nil {
		return prefix, done
	}
	for _, mid := range s.MachineIDs() {
		for _, a := range s.Assignments[mid] {
			if a.End <= now {
				prefix = append(prefix, a)
				done[a.JobID] = true
			}
		}
	}
	return prefix, done
}
