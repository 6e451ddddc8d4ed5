package model

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Assignment places one job on one machine for a fixed interval.
// End is always Start plus the job's processing time, the preceding setup
// occupies the machine before Start.
type Assignment struct {
	JobID     string
	MachineID string
	Start     TimeOfDay
	End       TimeOfDay
}

// UnassignedJob records a job the scheduler could not place, with the reason.
type UnassignedJob struct {
	JobID  string
	Reason string
}

// Schedule maps machine ids to their assignment sequences, each sorted by
// start time. Heuristics never mutate a schedule in place, improving one
// always produces a new instance. KPIs are derived on demand so they cannot
// drift from the assignment list.
type Schedule struct {
	Assignments map[string][]Assignment
	Unassigned  []UnassignedJob
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{Assignments: make(map[string][]Assignment)}
}

// Add appends an assignment to its machine sequence, keeping the sequence
// sorted by start time.
func (s *Schedule) Add(a Assignment) {
	seq := append(s.Assignments[a.MachineID], a)
	sort.Slice(seq, func(i, j int) bool {
		if seq[i].Start != seq[j].Start {
			return seq[i].Start < seq[j].Start
		}
		return seq[i].JobID < seq[j].JobID
	})
	s.Assignments[a.MachineID] = seq
}

// MarkUnassigned records a job that could not be placed.
func (s *Schedule) MarkUnassigned(jobID, reason string) {
	s.Unassigned = append(s.Unassigned, UnassignedJob{JobID: jobID, Reason: reason})
}

// MachineIDs returns the machine ids present in the schedule, sorted.
func (s *Schedule) MachineIDs() []string {
	ids := make([]string, 0, len(s.Assignments))
	for id := range s.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the assignment for a job id, if any.
func (s *Schedule) Lookup(jobID string) (Assignment, bool) {
	for _, seq := range s.Assignments {
		for _, a := range seq {
			if a.JobID == jobID {
				return a, true
			}
		}
	}
	return Assignment{}, false
}

// AssignedCount returns the number of placed jobs.
func (s *Schedule) AssignedCount() int {
	n := 0
	for _, seq := range s.Assignments {
		n += len(seq)
	}
	return n
}

// Clone deep-copies the schedule.
func (s *Schedule) Clone() *Schedule {
	cp := NewSchedule()
	for id, seq := range s.Assignments {
		cp.Assignments[id] = append([]Assignment(nil), seq...)
	}
	cp.Unassigned = append([]UnassignedJob(nil), s.Unassigned...)
	return cp
}

// KPI holds the derived quality indicators of a schedule.
type KPI struct {
	TotalTardiness  int     // minutes of lateness summed over assigned jobs
	TotalSetupTime  int     // changeover minutes summed over all machines
	SwitchCount     int     // number of product-type switches
	ImbalancePct    float64 // (max-min)/mean machine load, percent
	AssignedJobs    int
	UnassignedJobs  int
	OvertimeMinutes int // minutes scheduled past shift end, within the cap
}

// MachineLoad returns per-machine busy minutes, processing plus setup, for
// every machine in the given set. Machines without assignments count as zero.
func (s *Schedule) MachineLoad(jobs map[string]Job, machines []Machine, c Constraint) map[string]int {
	loads := make(map[string]int, len(machines))
	for _, m := range machines {
		loads[m.ID] = 0
	}
	for id, seq := range s.Assignments {
		busy := 0
		prevType := ""
		for _, a := range seq {
			j, ok := jobs[a.JobID]
			if !ok {
				continue
			}
			busy += j.ProcessingTime + c.SetupTime(prevType, j.ProductType)
			prevType = j.ProductType
		}
		loads[id] = busy
	}
	return loads
}

// KPIs computes the schedule's indicators as a pure function of the
// assignment list.
func (s *Schedule) KPIs(jobs map[string]Job, machines []Machine, c Constraint) KPI {
	k := KPI{AssignedJobs: s.AssignedCount(), UnassignedJobs: len(s.Unassigned)}

	for _, id := range s.MachineIDs() {
		prevType := ""
		for _, a := range s.Assignments[id] {
			j, ok := jobs[a.JobID]
			if !ok {
				continue
			}
			if a.End > j.DueTime {
				k.TotalTardiness += int(a.End - j.DueTime)
			}
			if a.End > c.ShiftEnd {
				k.OvertimeMinutes += int(a.End - c.ShiftEnd)
			}
			if prevType != "" && prevType != j.ProductType {
				k.SwitchCount++
				k.TotalSetupTime += c.SetupTime(prevType, j.ProductType)
			}
			prevType = j.ProductType
		}
	}

	k.ImbalancePct = s.imbalance(jobs, machines, c)
	return k
}

// CompatibleMachines filters a machine set down to the machines able to run
// at least one of the given jobs. Machines with no capability-compatible work
// do not take part in the load spread.
func CompatibleMachines(jobs map[string]Job, machines []Machine) []Machine {
	types := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		types[j.ProductType] = true
	}
	out := make([]Machine, 0, len(machines))
	for _, m := range machines {
		for t := range types {
			if m.CanProduce(t) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// imbalance measures the relative spread of machine loads over the machines
// that have compatible work. With fewer than two such machines, or no work at
// all, the spread is zero.
func (s *Schedule) imbalance(jobs map[string]Job, machines []Machine, c Constraint) float64 {
	relevant := CompatibleMachines(jobs, machines)
	if len(relevant) < 2 {
		return 0
	}
	loadMap := s.MachineLoad(jobs, relevant, c)
	loads := make([]float64, 0, len(relevant))
	for _, m := range relevant {
		loads = append(loads, float64(loadMap[m.ID]))
	}
	mean := stat.Mean(loads, nil)
	if mean == 0 {
		return 0
	}
	spread := floats.Max(loads) - floats.Min(loads)
	return spread / mean * 100
}
