package scheduling

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/shopfloor/shiftplan/core/model"
)

// BalanceConfig tunes the load-balancing heuristic. The move-acceptance
// thresholds are deliberately configuration, not constants.
type BalanceConfig struct {
	// SpreadThresholdPct stops balancing once the spread between the most-
	// and least-loaded machine drops below this percentage of the mean load.
	SpreadThresholdPct float64 `json:"spread_threshold_pct" yaml:"spread_threshold_pct"`
	// MaxMoves caps the number of accepted job moves per run.
	MaxMoves int `json:"max_moves" yaml:"max_moves"`
	// TardinessToleranceMin is the total tardiness regression, in minutes, a
	// single move may introduce before it is rolled back.
	TardinessToleranceMin int `json:"tardiness_tolerance_min" yaml:"tardiness_tolerance_min"`
}

// SetDefaults applies the documented defaults: 20% spread threshold, 12
// moves, zero tardiness tolerance.
func (c *BalanceConfig) SetDefaults() {
	if c.SpreadThresholdPct == 0 {
		c.SpreadThresholdPct = 20
	}
	if c.MaxMoves == 0 {
		c.MaxMoves = 12
	}
}

// Validate checks the tuning values.
func (c BalanceConfig) Validate() error {
	if c.SpreadThresholdPct < 0 {
		return fmt.Errorf("spread threshold must not be negative")
	}
	if c.MaxMoves < 0 {
		return fmt.Errorf("max moves must not be negative")
	}
	if c.TardinessToleranceMin < 0 {
		return fmt.Errorf("tardiness tolerance must not be negative")
	}
	return nil
}

// Balancer redistributes jobs from overloaded machines to underloaded
// compatible ones. Each move is re-validated: a move that loses a job, or
// that worsens total tardiness beyond the configured tolerance, is rolled
// back. The seed schedule is never mutated.
type Balancer struct {
	Config BalanceConfig
}

func (Balancer) Name() string { return "balance" }

// Build lets the balancer run as a standalone strategy: it seeds itself with
// a batching schedule and evens that out.
func (b Balancer) Build(in Input) (*model.Schedule, string) {
	seed, _ := Batching{}.Build(in)
	return b.Rebalance(in, seed)
}

// Rebalance produces a new schedule from the seed with machine loads evened
// out. Jobs the seed left unassigned are carried over unchanged.
func (b Balancer) Rebalance(in Input, seed *model.Schedule) (*model.Schedule, string) {
	cfg := b.Config
	cfg.SetDefaults()

	jobs := model.IndexJobs(in.Jobs)
	machines := model.IndexMachines(in.Machines)

	orders := ordersFromSchedule(seed, jobs)
	carried := append([]model.UnassignedJob(nil), seed.Unassigned...)
	current := rebuild(orders, carried, in)
	kpi := current.KPIs(jobs, in.Machines, in.Constraint)

	relevant := model.CompatibleMachines(jobs, in.Machines)
	moves := 0
	for moves < cfg.MaxMoves {
		loads := current.MachineLoad(jobs, in.Machines, in.Constraint)
		if spreadPct(loads, relevant) <= cfg.SpreadThresholdPct {
			break
		}
		next, nextKPI, ok := b.bestMove(orders, current, carried, kpi, loads, relevant, jobs, machines, in, cfg)
		if !ok {
			break
		}
		current, kpi = next, nextKPI
		moves++
	}

	summary := fmt.Sprintf("Load balancing applied %d move(s); imbalance now %.1f%% with %d minute(s) total tardiness.",
		moves, kpi.ImbalancePct, kpi.TotalTardiness)
	return current, summary
}

// bestMove tries to move one job from the most-loaded machine to a less
// loaded compatible machine. It returns the rebuilt schedule on success and
// mutates orders accordingly; rejected trials leave orders untouched.
func (b Balancer) bestMove(
	orders map[string][]model.Job,
	current *model.Schedule,
	carried []model.UnassignedJob,
	kpi model.KPI,
	loads map[string]int,
	relevant []model.Machine,
	jobs map[string]model.Job,
	machines map[string]model.Machine,
	in Input,
	cfg BalanceConfig,
) (*model.Schedule, model.KPI, bool) {
	src := maxLoaded(loads)
	if src == "" {
		return nil, model.KPI{}, false
	}
	curSpread := spreadPct(loads, relevant)

	for _, dst := range machinesByLoad(loads) {
		if dst == src || loads[dst] >= loads[src] {
			continue
		}
		dstMachine, ok := machines[dst]
		if !ok {
			continue
		}
		for _, j := range moveCandidates(orders[src], dstMachine, orders[dst], in.Constraint) {
			trial := cloneOrders(orders)
			trial[src] = removeJob(trial[src], j.ID)
			trial[dst] = insertNearType(trial[dst], j)

			sched := rebuild(trial, carried, in)
			trialKPI := sched.KPIs(jobs, in.Machines, in.Constraint)
			if len(sched.Unassigned) > len(current.Unassigned) {
				continue
			}
			if trialKPI.TotalTardiness > kpi.TotalTardiness+cfg.TardinessToleranceMin {
				continue
			}
			trialLoads := sched.MachineLoad(jobs, in.Machines, in.Constraint)
			if spreadPct(trialLoads, relevant) >= curSpread {
				continue
			}
			for id, seq := range trial {
				orders[id] = seq
			}
			return sched, trialKPI, true
		}
	}
	return nil, model.KPI{}, false
}

// moveCandidates lists jobs on the source machine that the destination can
// run, cheapest first: normal priority before rush, then by how little setup
// the move is expected to add, then by id.
func moveCandidates(srcOrder []model.Job, dst model.Machine, dstOrder []model.Job, c model.Constraint) []model.Job {
	lastType := ""
	if len(dstOrder) > 0 {
		lastType = dstOrder[len(dstOrder)-1].ProductType
	}
	var out []model.Job
	for _, j := range srcOrder {
		if !dst.CanProduce(j.ProductType) {
			continue
		}
		if !contains(j.MachineOptions, dst.ID) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool {
		a, b := out[i], out[k]
		if a.IsRush() != b.IsRush() {
			return !a.IsRush()
		}
		da := c.SetupTime(lastType, a.ProductType)
		db := c.SetupTime(lastType, b.ProductType)
		if da != db {
			return da < db
		}
		return a.ID < b.ID
	})
	return out
}

// rebuild replays per-machine job orders on fresh timelines. Jobs that no
// longer fit are reported unassigned; the carried list (the seed's own
// unassigned jobs) is appended untouched.
func rebuild(orders map[string][]model.Job, carried []model.UnassignedJob, in Input) *model.Schedule {
	tls := newTimelines(in.Machines, in.Constraint, in.Release)
	s := model.NewSchedule()

	ids := make([]string, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		tl, ok := tls[id]
		if !ok {
			for _, j := range orders[id] {
				s.MarkUnassigned(j.ID, ReasonUnknownMachine)
			}
			continue
		}
		for _, j := range orders[id] {
			sl, ok := tl.place(j)
			if !ok {
				s.MarkUnassigned(j.ID, ReasonNoCapacity)
				continue
			}
			tl.commit(j, sl)
			s.Add(tl.placed[len(tl.placed)-1])
		}
	}
	for _, u := range carried {
		s.MarkUnassigned(u.JobID, u.Reason)
	}
	return s
}

// ordersFromSchedule recovers the per-machine job sequences of a schedule.
func ordersFromSchedule(s *model.Schedule, jobs map[string]model.Job) map[string][]model.Job {
	orders := make(map[string][]model.Job, len(s.Assignments))
	for _, id := range s.MachineIDs() {
		for _, a := range s.Assignments[id] {
			if j, ok := jobs[a.JobID]; ok {
				orders[id] = append(orders[id], j)
			}
		}
	}
	return orders
}

// spreadPct returns the load spread as a percentage of the mean, the same
// measure the imbalance KPI reports. Callers pass only the machines with
// compatible work; an idle machine that cannot run any job never counts.
func spreadPct(loads map[string]int, machines []model.Machine) float64 {
	if len(machines) < 2 {
		return 0
	}
	vals := make([]float64, 0, len(machines))
	for _, m := range machines {
		vals = append(vals, float64(loads[m.ID]))
	}
	mean := stat.Mean(vals, nil)
	if mean == 0 {
		return 0
	}
	return (floats.Max(vals) - floats.Min(vals)) / mean * 100
}

func maxLoaded(loads map[string]int) string {
	best := ""
	bestLoad := -1
	ids := make([]string, 0, len(loads))
	for id := range loads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if loads[id] > bestLoad {
			best, bestLoad = id, loads[id]
		}
	}
	return best
}

func machinesByLoad(loads map[string]int) []string {
	ids := make([]string, 0, len(loads))
	for id := range loads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, k int) bool {
		if loads[ids[i]] != loads[ids[k]] {
			return loads[ids[i]] < loads[ids[k]]
		}
		return ids[i] < ids[k]
	})
	return ids
}

func cloneOrders(orders map[string][]model.Job) map[string][]model.Job {
	cp := make(map[string][]model.Job, len(orders))
	for id, seq := range orders {
		cp[id] = append([]model.Job(nil), seq...)
	}
	return cp
}

func removeJob(seq []model.Job, jobID string) []model.Job {
	out := make([]model.Job, 0, len(seq))
	for _, j := range seq {
		if j.ID != jobID {
			out = append(out, j)
		}
	}
	return out
}

// insertNearType places the job right after the last job of the same product
// type so an existing batch absorbs it, or appends when the type is new to
// the machine.
func insertNearType(seq []model.Job, j model.Job) []model.Job {
	pos := len(seq)
	for i := len(seq) - 1; i >= 0; i-- {
		if seq[i].ProductType == j.ProductType {
			pos = i + 1
			break
		}
	}
	out := make([]model.Job, 0, len(seq)+1)
	out = append(out, seq[:pos]...)
	out = append(out, j)
	out = append(out, seq[pos:]...)
	return out
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
