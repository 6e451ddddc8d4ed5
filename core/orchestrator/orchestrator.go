// Package orchestrator runs the scheduling strategies as an explicit state
// machine, validates every candidate and selects the best schedule by
// weighted cost. It also handles downtime-triggered re-optimization of a
// running shift.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopfloor/shiftplan/core/advisory"
	"github.com/shopfloor/shiftplan/core/logger"
	"github.com/shopfloor/shiftplan/core/metrics"
	"github.com/shopfloor/shiftplan/core/model"
	"github.com/shopfloor/shiftplan/core/scheduling"
	"github.com/shopfloor/shiftplan/core/validation"
)

// State names one step of the optimization workflow.
type State string

const (
	StateInit                State = "init"
	StateBaselineBuilt       State = "baseline_built"
	StateBatched             State = "batched"
	StateBalanced            State = "balanced"
	StateValidated           State = "validated"
	StateSelected            State = "selected"
	StateDone                State = "done"
	StateReoptimizeTriggered State = "reoptimize_triggered"
)

// Mode selects which strategies contribute candidates.
type Mode string

const (
	ModeBaseline     Mode = "baseline"
	ModeBatching     Mode = "batching"
	ModeBalanced     Mode = "balanced"
	ModeOrchestrated Mode = "orchestrated"
)

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBaseline, ModeBatching, ModeBalanced, ModeOrchestrated:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

// Stage names used in candidates, metrics and rationale.
const (
	StageBaseline = "baseline"
	StageBatching = "batching"
	StageBalance  = "balance"
)

// Candidate is one evaluated schedule.
type Candidate struct {
	Stage     string
	Schedule  *model.Schedule
	KPI       model.KPI
	Report    validation.Report
	Summary   string // deterministic strategy summary
	Rationale string // advisory text, best-effort, may be empty
}

// Result is the outcome of an optimization run.
type Result struct {
	SessionID  string
	Mode       Mode
	Candidates []Candidate
	Selected   *Candidate
	Trace      []State
	Elapsed    time.Duration
}

// Pipeline wires the strategies with logging, metrics and the advisory
// annotator. The zero dependencies default to no-ops, scheduling never
// depends on observability or narration.
type Pipeline struct {
	log       logger.Logger
	sink      metrics.RunRecorder
	annotator advisory.Annotator
	baseline  scheduling.Strategy
	batching  scheduling.Strategy
	balance   scheduling.Balancer
}

// New creates a Pipeline. Nil log, sink or annotator default to no-ops.
func New(log logger.Logger, sink metrics.RunRecorder, annotator advisory.Annotator, balanceCfg scheduling.BalanceConfig) *Pipeline {
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if annotator == nil {
		annotator = advisory.Nop{}
	}
	return &Pipeline{
		log:       log,
		sink:      sink,
		annotator: annotator,
		baseline:  scheduling.Baseline{},
		batching:  scheduling.Batching{},
		balance:   scheduling.Balancer{Config: balanceCfg},
	}
}

// Run executes the pipeline for the session's full job set.
func (p *Pipeline) Run(ctx context.Context, sess *Session, mode Mode) (*Result, error) {
	in := scheduling.Input{Jobs: sess.Jobs, Machines: sess.Machines, Constraint: sess.Constraint}
	return p.run(ctx, sess, in, mode, nil)
}

// run builds, validates and selects candidates for the given input. A
// non-empty prefix (fixed assignments from an interrupted shift) is merged
// into every candidate before validation.
func (p *Pipeline) run(ctx context.Context, sess *Session, in scheduling.Input, mode Mode, prefix []model.Assignment) (*Result, error) {
	start := time.Now()
	if err := sess.Constraint.Validate(); err != nil {
		return nil, fmt.Errorf("constraint: %w", err)
	}
	if err := sess.Constraint.ValidateSetupTable(sess.productTypes()); err != nil {
		return nil, fmt.Errorf("constraint: %w", err)
	}
	if err := sess.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}

	res := &Result{SessionID: sess.ID, Mode: mode, Trace: []State{StateInit}}

	baselineSched, baselineSummary := p.baseline.Build(in)
	res.Trace = append(res.Trace, StateBaselineBuilt)
	p.log.Infof("session %s: baseline built, %d assigned", sess.ID, baselineSched.AssignedCount())

	var batchedSched, balancedSched *model.Schedule
	var batchedSummary, balancedSummary string
	if mode != ModeBaseline {
		batchedSched, batchedSummary = p.batching.Build(in)
		res.Trace = append(res.Trace, StateBatched)
		p.log.Infof("session %s: batching done, %d assigned", sess.ID, batchedSched.AssignedCount())
	}
	if mode == ModeBalanced || mode == ModeOrchestrated {
		balancedSched, balancedSummary = p.balance.Rebalance(in, batchedSched)
		res.Trace = append(res.Trace, StateBalanced)
		p.log.Infof("session %s: balancing done, %d assigned", sess.ID, balancedSched.AssignedCount())
	}

	add := func(stage string, sched *model.Schedule, summary string) {
		if sched == nil {
			return
		}
		merged := withPrefix(sched, prefix)
		for _, u := range sess.InvalidInputs {
			merged.MarkUnassigned(u.JobID, u.Reason)
		}
		res.Candidates = append(res.Candidates, Candidate{Stage: stage, Schedule: merged, Summary: summary})
	}
	switch mode {
	case ModeBaseline:
		add(StageBaseline, baselineSched, baselineSummary)
	case ModeBatching:
		add(StageBatching, batchedSched, batchedSummary)
	case ModeBalanced:
		add(StageBalance, balancedSched, balancedSummary)
	default:
		add(StageBaseline, baselineSched, baselineSummary)
		add(StageBatching, batchedSched, batchedSummary)
		add(StageBalance, balancedSched, balancedSummary)
	}

	jobIndex := model.IndexJobs(sess.Jobs)
	for i := range res.Candidates {
		c := &res.Candidates[i]
		c.KPI = c.Schedule.KPIs(jobIndex, sess.Machines, sess.Constraint)
		c.Report = validation.Validate(c.Schedule, sess.Jobs, sess.Machines, sess.Constraint)
	}
	res.Trace = append(res.Trace, StateValidated)

	p.annotate(ctx, res)

	res.Selected = selectBest(res.Candidates, sess.Weights)
	res.Trace = append(res.Trace, StateSelected, StateDone)
	res.Elapsed = time.Since(start)

	p.record(sess, res)
	p.log.Infof("session %s: selected %s schedule (%s) in %s",
		sess.ID, res.Selected.Stage, res.Selected.Report.Verdict, res.Elapsed)
	return res, nil
}

// annotate attaches best-effort rationale text to each candidate. A failing
// annotator leaves the deterministic summary as the only narrative.
func (p *Pipeline) annotate(ctx context.Context, res *Result) {
	for i := range res.Candidates {
		c := &res.Candidates[i]
		text, err := p.annotator.Summarize(ctx, c.Stage, c.Schedule, c.KPI)
		if err != nil {
			// TimeBoxed annotators recover internally; a raw annotator error
			// is still advisory-only.
			p.log.Warnf("advisory failed for stage %s: %v", c.Stage, err)
			continue
		}
		c.Rationale = text
	}
}

// record forwards per-candidate run metrics to the sink.
func (p *Pipeline) record(sess *Session, res *Result) {
	recs := make([]metrics.RunResult, 0, len(res.Candidates))
	now := time.Now()
	for i := range res.Candidates {
		c := &res.Candidates[i]
		recs = append(recs, metrics.RunResult{
			SessionID:      sess.ID,
			Strategy:       c.Stage,
			Verdict:        string(c.Report.Verdict),
			Selected:       c == res.Selected,
			Tardiness:      c.KPI.TotalTardiness,
			SetupMinutes:   c.KPI.TotalSetupTime,
			SwitchCount:    c.KPI.SwitchCount,
			ImbalancePct:   c.KPI.ImbalancePct,
			AssignedJobs:   c.KPI.AssignedJobs,
			UnassignedJobs: c.KPI.UnassignedJobs,
			Duration:       res.Elapsed,
			Time:           now,
		})
	}
	if err := p.sink.RecordOptimizationRun(recs); err != nil {
		p.log.Errorf("metrics error: %v", err)
	}
}

// stageRank orders candidates for final tie-breaking: the more refined stage
// wins.
func stageRank(stage string) int {
	switch stage {
	case StageBalance:
		return 0
	case StageBatching:
		return 1
	default:
		return 2
	}
}

// selectBest picks the winning candidate: executable verdicts only, lowest
// weighted cost, Compliant preferred at equal cost, then fewest criticals.
// When every candidate is structurally invalid the least-violating one is
// returned so the caller can still render it; its verdict stays Invalid.
func selectBest(candidates []Candidate, w Weights) *Candidate {
	var best *Candidate
	for i := range candidates {
		c := &candidates[i]
		if !c.Report.IsExecutable() {
			continue
		}
		if best == nil || better(c, best, w) {
			best = c
		}
	}
	if best != nil {
		return best
	}
	// no executable candidate: fall back to fewest violations
	for i := range candidates {
		c := &candidates[i]
		if best == nil ||
			len(c.Report.Violations) < len(best.Report.Violations) ||
			(len(c.Report.Violations) == len(best.Report.Violations) && stageRank(c.Stage) < stageRank(best.Stage)) {
			best = c
		}
	}
	return best
}

func better(a, b *Candidate, w Weights) bool {
	costA, costB := w.Cost(a.KPI), w.Cost(b.KPI)
	if costA != costB {
		return costA < costB
	}
	compliantA := a.Report.Verdict == validation.VerdictCompliant
	compliantB := b.Report.Verdict == validation.VerdictCompliant
	if compliantA != compliantB {
		return compliantA
	}
	if ca, cb := a.Report.CriticalCount(), b.Report.CriticalCount(); ca != cb {
		return ca < cb
	}
	return stageRank(a.Stage) < stageRank(b.Stage)
}

// withPrefix clones the schedule and grafts the fixed prefix assignments
// back in.
func withPrefix(s *model.Schedule, prefix []model.Assignment) *model.Schedule {
	out := s.Clone()
	for _, a := range prefix {
		out.Add(a)
	}
	return out
}
