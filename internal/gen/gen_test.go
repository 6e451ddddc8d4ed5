package gen

import (
	"math/rand"
	"testing"

	"github.com/shopfloor/shiftplan/core/model"
)

func TestRandomJobsAreWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	machines := DemoMachines()
	c := DemoConstraint()

	jobs := RandomJobs(rng, 20, 0.3, machines, c)
	if len(jobs) != 20 {
		t.Fatalf("expected 20 jobs, got %d", len(jobs))
	}
	byMachine := model.IndexMachines(machines)
	for _, j := range jobs {
		if err := j.Validate(); err != nil {
			t.Fatalf("generated job invalid: %v", err)
		}
		if j.DueTime <= c.ShiftStart || j.DueTime > c.ShiftEnd {
			t.Fatalf("job %s due %s outside the shift", j.ID, j.DueTime)
		}
		for _, opt := range j.MachineOptions {
			m, ok := byMachine[opt]
			if !ok {
				t.Fatalf("job %s references unknown machine %s", j.ID, opt)
			}
			if !m.CanProduce(j.ProductType) {
				t.Fatalf("job %s listed on %s which cannot produce %s", j.ID, opt, j.ProductType)
			}
		}
	}
}

func TestRandomJobsDeterministicPerSeed(t *testing.T) {
	a := RandomJobs(rand.New(rand.NewSource(7)), 5, 0.5, DemoMachines(), DemoConstraint())
	b := RandomJobs(rand.New(rand.NewSource(7)), 5, 0.5, DemoMachines(), DemoConstraint())
	for i := range a {
		if a[i].ID != b[i].ID || a[i].ProductType != b[i].ProductType || a[i].DueTime != b[i].DueTime {
			t.Fatalf("same seed produced different jobs: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestRandomDowntimeWithinShift(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	machines := DemoMachines()
	c := DemoConstraint()

	for i := 0; i < 50; i++ {
		id, w := RandomDowntime(rng, machines, c)
		if _, ok := model.IndexMachines(machines)[id]; !ok {
			t.Fatalf("downtime on unknown machine %s", id)
		}
		if w.Start < c.ShiftStart || w.End > c.ShiftEnd || w.Start >= w.End {
			t.Fatalf("downtime window %s-%s outside the shift", w.Start, w.End)
		}
	}
}

func TestDemoConstraintSetupTableComplete(t *testing.T) {
	c := DemoConstraint()
	if err := c.ValidateSetupTable([]string{"P_A", "P_B", "P_C"}); err != nil {
		t.Fatalf("demo setup table incomplete: %v", err)
	}
}
