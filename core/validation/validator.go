// Package validation checks candidate schedules against shift hours, the
// overtime cap, machine downtime, machine compatibility and deadline rules.
// It is a pure function of its inputs: the same schedule always yields the
// same report.
package validation

import (
	"fmt"
	"sort"

	"github.com/shopfloor/shiftplan/core/model"
)

// Validate runs every check independently and classifies the result.
func Validate(s *model.Schedule, jobs []model.Job, machines []model.Machine, c model.Constraint) Report {
	v := &visitor{
		jobs:     model.IndexJobs(jobs),
		machines: model.IndexMachines(machines),
		c:        c,
	}

	v.checkCompleteness(s, jobs)
	v.checkAssignments(s)
	v.checkOverlaps(s)

	return Report{Violations: v.found, Verdict: v.verdict()}
}

type visitor struct {
	jobs       map[string]model.Job
	machines   map[string]model.Machine
	c          model.Constraint
	found      []Violation
	structural bool
	critical   bool
	unassigned bool
}

func (v *visitor) add(sev Severity, code Code, format string, args ...any) {
	v.found = append(v.found, Violation{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)})
	if sev == SeverityCritical {
		v.critical = true
	}
	switch code {
	case CodeJobDuplicated, CodeDoubleBooking, CodeBadInterval, CodeUnknownJob:
		v.structural = true
	}
}

// checkCompleteness verifies every input job is either assigned or explicitly
// unassigned, exactly once.
func (v *visitor) checkCompleteness(s *model.Schedule, jobs []model.Job) {
	seen := make(map[string]int, len(jobs))
	for _, seq := range s.Assignments {
		for _, a := range seq {
			seen[a.JobID]++
		}
	}
	for _, u := range s.Unassigned {
		seen[u.JobID]++
		v.unassigned = true
		v.add(SeverityCritical, CodeJobUnassigned, "job %s left unscheduled: %s", u.JobID, u.Reason)
	}

	sorted := append([]model.Job(nil), jobs...)
	sort.Slice(sorted, func(i, k int) bool { return sorted[i].ID < sorted[k].ID })
	for _, j := range sorted {
		switch seen[j.ID] {
		case 0:
			v.add(SeverityCritical, CodeJobMissing, "job %s is neither assigned nor reported unassigned", j.ID)
		case 1:
		default:
			v.add(SeverityCritical, CodeJobDuplicated, "job %s appears %d times in the schedule", j.ID, seen[j.ID])
		}
	}
}

// checkAssignments validates each assignment in isolation.
func (v *visitor) checkAssignments(s *model.Schedule) {
	for _, mid := range s.MachineIDs() {
		for _, a := range s.Assignments[mid] {
			j, ok := v.jobs[a.JobID]
			if !ok {
				v.add(SeverityCritical, CodeUnknownJob, "assignment on %s references unknown job %s", mid, a.JobID)
				continue
			}

			if int(a.End-a.Start) != j.ProcessingTime {
				v.add(SeverityCritical, CodeBadInterval,
					"job %s: interval %s-%s does not match processing time %d min",
					j.ID, a.Start, a.End, j.ProcessingTime)
			}

			m, ok := v.machines[mid]
			if !ok {
				v.add(SeverityCritical, CodeUnknownMachine, "job %s assigned to unknown machine %s", j.ID, mid)
			} else {
				if !m.CanProduce(j.ProductType) {
					v.add(SeverityCritical, CodeMachineIncompatible,
						"machine %s does not support product type %s required by job %s", mid, j.ProductType, j.ID)
				}
				for _, w := range m.Downtime {
					if w.Overlaps(a.Start, a.End) {
						v.add(SeverityCritical, CodeDowntimeOverlap,
							"job %s (%s-%s) overlaps downtime %s-%s on machine %s (%s)",
							j.ID, a.Start, a.End, w.Start, w.End, mid, w.Reason)
					}
				}
			}

			v.checkWindow(j, a)
			v.checkDeadline(j, a)
		}
	}
}

func (v *visitor) checkWindow(j model.Job, a model.Assignment) {
	if a.Start < v.c.ShiftStart {
		v.add(SeverityCritical, CodeOutsideShift, "job %s starts %s, before shift start %s", j.ID, a.Start, v.c.ShiftStart)
	}
	switch {
	case a.End > v.c.LatestEnd():
		v.add(SeverityCritical, CodeBeyondOvertimeCap,
			"job %s ends %s, %d min past the overtime cap %s",
			j.ID, a.End, int(a.End-v.c.LatestEnd()), v.c.LatestEnd())
	case a.End > v.c.ShiftEnd:
		v.add(SeverityWarning, CodeWithinOvertime,
			"job %s ends %s, using %d min of overtime", j.ID, a.End, int(a.End-v.c.ShiftEnd))
	}
}

func (v *visitor) checkDeadline(j model.Job, a model.Assignment) {
	if a.End <= j.DueTime {
		return
	}
	late := int(a.End - j.DueTime)
	if j.IsRush() {
		v.add(SeverityCritical, CodeRushLate, "rush job %s misses its due time %s by %d min", j.ID, j.DueTime, late)
	} else {
		v.add(SeverityWarning, CodeJobLate, "job %s misses its due time %s by %d min", j.ID, j.DueTime, late)
	}
}

// checkOverlaps detects double-booked machines.
func (v *visitor) checkOverlaps(s *model.Schedule) {
	for _, mid := range s.MachineIDs() {
		seq := s.Assignments[mid]
		for i := 1; i < len(seq); i++ {
			prev, cur := seq[i-1], seq[i]
			if model.Overlaps(prev.Start, prev.End, cur.Start, cur.End) {
				v.add(SeverityCritical, CodeDoubleBooking,
					"machine %s double-booked: job %s (%s-%s) overlaps job %s (%s-%s)",
					mid, prev.JobID, prev.Start, prev.End, cur.JobID, cur.Start, cur.End)
			}
		}
	}
}

func (v *visitor) verdict() Verdict {
	switch {
	case v.structural:
		return VerdictInvalid
	case v.critical || v.unassigned:
		return VerdictBestEffort
	default:
		return VerdictCompliant
	}
}
