// Package gen produces demo data sets for the simulate command: a fixed
// machine park, the standard shift constraint and randomized job lists and
// downtime windows.
package gen

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shopfloor/shiftplan/core/model"
)

// DemoMachines returns the three-machine demo park.
func DemoMachines() []model.Machine {
	return []model.Machine{
		{ID: "M1", Capabilities: []string{"P_A", "P_B"}},
		{ID: "M2", Capabilities: []string{"P_A", "P_C"}},
		{ID: "M3", Capabilities: []string{"P_B", "P_C"}},
	}
}

// DemoConstraint returns the standard 08:00-16:00 shift with a 30 minute
// overtime cap and symmetric changeover times.
func DemoConstraint() model.Constraint {
	return model.Constraint{
		ShiftStart:         model.MustTimeOfDay("08:00"),
		ShiftEnd:           model.MustTimeOfDay("16:00"),
		MaxOvertimeMinutes: 30,
		SetupTimes: map[string]int{
			"P_A->P_B": 10, "P_B->P_A": 10,
			"P_A->P_C": 15, "P_C->P_A": 15,
			"P_B->P_C": 12, "P_C->P_B": 12,
		},
	}
}

var durations = []int{30, 45, 60, 90}

// RandomJobs generates numJobs jobs over the machines' combined product
// range. Due times land in the first half of the shift so the heuristics have
// something to fight over.
func RandomJobs(rng *rand.Rand, numJobs int, rushProbability float64, machines []model.Machine, c model.Constraint) []model.Job {
	products := make(map[string]bool)
	for _, m := range machines {
		for _, p := range m.Capabilities {
			products[p] = true
		}
	}
	sorted := make([]string, 0, len(products))
	for p := range products {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	startHour := int(c.ShiftStart) / 60
	endHour := int(c.ShiftEnd) / 60
	halfSpan := (endHour - startHour) / 2

	jobs := make([]model.Job, 0, numJobs)
	for i := 0; i < numJobs; i++ {
		prod := sorted[rng.Intn(len(sorted))]

		dueHour := startHour + 1 + rng.Intn(halfSpan+1)
		dueMin := []int{0, 15, 30, 45}[rng.Intn(4)]

		var options []string
		for _, m := range machines {
			if m.CanProduce(prod) {
				options = append(options, m.ID)
			}
		}

		priority := model.PriorityNormal
		if rng.Float64() < rushProbability {
			priority = model.PriorityRush
		}

		jobs = append(jobs, model.Job{
			ID:             fmt.Sprintf("J%03d", i+1),
			ProductType:    prod,
			ProcessingTime: durations[rng.Intn(len(durations))],
			DueTime:        model.TimeOfDay(dueHour*60 + dueMin),
			Priority:       priority,
			MachineOptions: options,
		})
	}
	return jobs
}

// RandomDowntime picks one machine and returns an unplanned stop starting
// between 10% and 70% into the shift, clamped to the shift end.
func RandomDowntime(rng *rand.Rand, machines []model.Machine, c model.Constraint) (string, model.DowntimeWindow) {
	m := machines[rng.Intn(len(machines))]

	span := int(c.ShiftEnd - c.ShiftStart)
	earliest := int(c.ShiftStart) + span/10
	latest := int(c.ShiftStart) + span*7/10
	start := earliest + rng.Intn(latest-earliest+1)

	duration := []int{30, 45, 60, 90, 120}[rng.Intn(5)]
	end := start + duration
	if end > int(c.ShiftEnd) {
		end = int(c.ShiftEnd)
	}

	return m.ID, model.DowntimeWindow{
		Start:  model.TimeOfDay(start),
		End:    model.TimeOfDay(end),
		Reason: "unplanned machine stop",
	}
}
