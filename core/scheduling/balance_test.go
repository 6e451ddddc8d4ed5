package scheduling

import (
	"testing"

	"github.com/shopfloor/shiftplan/core/model"
)

// lopsidedSeed puts four one-hour P_A jobs on M1 and nothing on M2.
func lopsidedSeed(t *testing.T) (Input, *model.Schedule) {
	t.Helper()
	jobs := []model.Job{
		job("J001", "P_A", 60, "16:00", model.PriorityNormal, "M1", "M2"),
		job("J002", "P_A", 60, "16:00", model.PriorityNormal, "M1", "M2"),
		job("J003", "P_A", 60, "16:00", model.PriorityNormal, "M1", "M2"),
		job("J004", "P_A", 60, "16:00", model.PriorityNormal, "M1", "M2"),
	}
	in := Input{Jobs: jobs, Machines: testMachines(), Constraint: testConstraint()}
	seed := model.NewSchedule()
	start := model.MustTimeOfDay("08:00")
	for _, j := range jobs {
		seed.Add(model.Assignment{JobID: j.ID, MachineID: "M1", Start: start, End: start.Add(60)})
		start = start.Add(60)
	}
	return in, seed
}

func TestRebalanceEvensLoads(t *testing.T) {
	in, seed := lopsidedSeed(t)
	idx := model.IndexJobs(in.Jobs)

	seedKPI := seed.KPIs(idx, in.Machines, in.Constraint)
	balanced, _ := Balancer{}.Rebalance(in, seed)
	kpi := balanced.KPIs(idx, in.Machines, in.Constraint)

	if kpi.ImbalancePct > seedKPI.ImbalancePct {
		t.Fatalf("imbalance worsened: %.1f > %.1f", kpi.ImbalancePct, seedKPI.ImbalancePct)
	}
	if kpi.ImbalancePct != 0 {
		t.Fatalf("expected even loads, imbalance %.1f%%", kpi.ImbalancePct)
	}
	if len(balanced.Unassigned) != 0 {
		t.Fatalf("balancer lost jobs: %v", balanced.Unassigned)
	}
	if balanced.AssignedCount() != 4 {
		t.Fatalf("expected 4 assigned, got %d", balanced.AssignedCount())
	}
}

func TestRebalanceSeedUntouched(t *testing.T) {
	in, seed := lopsidedSeed(t)
	before := len(seed.Assignments["M1"])
	_, _ = Balancer{}.Rebalance(in, seed)
	if len(seed.Assignments["M1"]) != before || len(seed.Assignments["M2"]) != 0 {
		t.Fatalf("seed schedule mutated")
	}
}

func TestRebalanceRollsBackTardyMove(t *testing.T) {
	in, seed := lopsidedSeed(t)
	// Any job moved to M2 starts after 15:30 and finishes past its due time.
	in.Machines[1].Downtime = []model.DowntimeWindow{{
		Start: model.MustTimeOfDay("08:00"), End: model.MustTimeOfDay("15:30"), Reason: "retooling",
	}}
	idx := model.IndexJobs(in.Jobs)

	balanced, _ := Balancer{Config: BalanceConfig{TardinessToleranceMin: 0}}.Rebalance(in, seed)
	kpi := balanced.KPIs(idx, in.Machines, in.Constraint)
	if kpi.TotalTardiness != 0 {
		t.Fatalf("zero tolerance must reject tardy moves, tardiness %d", kpi.TotalTardiness)
	}
	if len(balanced.Assignments["M2"]) != 0 {
		t.Fatalf("move was not rolled back")
	}

	// A 30 minute tolerance admits exactly one move (ends 16:30, 30 late).
	balanced, _ = Balancer{Config: BalanceConfig{TardinessToleranceMin: 30}}.Rebalance(in, seed)
	if len(balanced.Assignments["M2"]) != 1 {
		t.Fatalf("expected one tolerated move, got %d", len(balanced.Assignments["M2"]))
	}
}

func TestRebalanceNeverIncreasesUnassigned(t *testing.T) {
	in, seed := lopsidedSeed(t)
	// M2 is blocked so completely that a moved job cannot fit at all.
	in.Machines[1].Downtime = []model.DowntimeWindow{{
		Start: model.MustTimeOfDay("08:00"), End: model.MustTimeOfDay("16:20"), Reason: "breakdown",
	}}
	balanced, _ := Balancer{}.Rebalance(in, seed)
	if len(balanced.Unassigned) != 0 {
		t.Fatalf("balancer dropped jobs: %v", balanced.Unassigned)
	}
	if balanced.AssignedCount() != 4 {
		t.Fatalf("assignments lost: %d", balanced.AssignedCount())
	}
}

func TestRebalanceMoveCap(t *testing.T) {
	in, seed := lopsidedSeed(t)
	balanced, _ := Balancer{Config: BalanceConfig{MaxMoves: 1, SpreadThresholdPct: 1}}.Rebalance(in, seed)
	if got := len(balanced.Assignments["M2"]); got != 1 {
		t.Fatalf("move cap ignored: %d moves applied", got)
	}
}

func TestRebalanceSkipsMachinesWithoutCompatibleWork(t *testing.T) {
	jobs := []model.Job{
		job("J001", "P_A", 60, "16:00", model.PriorityNormal, "M1", "M2"),
		job("J002", "P_A", 60, "16:00", model.PriorityNormal, "M1", "M2"),
	}
	machines := []model.Machine{
		{ID: "M1", Capabilities: []string{"P_A"}},
		{ID: "M2", Capabilities: []string{"P_Z"}},
	}
	in := Input{Jobs: jobs, Machines: machines, Constraint: testConstraint()}
	seed := model.NewSchedule()
	seed.Add(model.Assignment{JobID: "J001", MachineID: "M1", Start: model.MustTimeOfDay("08:00"), End: model.MustTimeOfDay("09:00")})
	seed.Add(model.Assignment{JobID: "J002", MachineID: "M1", Start: model.MustTimeOfDay("09:00"), End: model.MustTimeOfDay("10:00")})

	balanced, _ := Balancer{}.Rebalance(in, seed)
	if len(balanced.Assignments["M2"]) != 0 {
		t.Fatalf("job moved to a machine that cannot run it: %v", balanced.Assignments["M2"])
	}
	kpi := balanced.KPIs(model.IndexJobs(jobs), machines, in.Constraint)
	if kpi.ImbalancePct != 0 {
		t.Fatalf("idle incompatible machine inflates the spread: %.1f%%", kpi.ImbalancePct)
	}
}

func TestRebalanceCarriesUnassigned(t *testing.T) {
	in, seed := lopsidedSeed(t)
	seed.MarkUnassigned("J999", ReasonNoMachine)
	balanced, _ := Balancer{}.Rebalance(in, seed)
	if len(balanced.Unassigned) != 1 || balanced.Unassigned[0].JobID != "J999" {
		t.Fatalf("unassigned list not carried: %v", balanced.Unassigned)
	}
}
