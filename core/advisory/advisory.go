// Package advisory defines the narrative side-channel of the pipeline. An
// Annotator turns a finished stage into human-readable rationale text. It is
// called after a schedule is finalized and carries no scheduling authority:
// the pipeline result never depends on an annotation succeeding.
package advisory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopfloor/shiftplan/core/logger"
	"github.com/shopfloor/shiftplan/core/model"
)

// Annotator summarizes a pipeline stage. Implementations may call external
// services and must honor the context.
type Annotator interface {
	Summarize(ctx context.Context, stage string, schedule *model.Schedule, kpi model.KPI) (string, error)
}

// Nop returns an empty rationale for every stage.
type Nop struct{}

func (Nop) Summarize(context.Context, string, *model.Schedule, model.KPI) (string, error) {
	return "", nil
}

// KPIText renders a one-line rationale from the schedule's indicators. It is
// the default annotator when no external narration service is configured.
type KPIText struct{}

func (KPIText) Summarize(_ context.Context, stage string, schedule *model.Schedule, kpi model.KPI) (string, error) {
	return fmt.Sprintf("%s: %d job(s) placed, %d unassigned, %d min tardiness, %d min setup, %.1f%% load imbalance",
		stage, kpi.AssignedJobs, kpi.UnassignedJobs, kpi.TotalTardiness, kpi.TotalSetupTime, kpi.ImbalancePct), nil
}

// TimeBoxed wraps an Annotator so that a slow or failing implementation can
// never delay or fail the scheduling result. On error, timeout or context
// cancellation it returns the fallback text.
type TimeBoxed struct {
	Inner    Annotator
	Timeout  time.Duration
	Fallback string
	Log      logger.Logger
}

// NewTimeBoxed wraps the annotator with the given timeout. A zero timeout
// defaults to two seconds.
func NewTimeBoxed(inner Annotator, timeout time.Duration, log logger.Logger) TimeBoxed {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return TimeBoxed{Inner: inner, Timeout: timeout, Log: log}
}

// Summarize runs the inner annotator under a deadline and recovers locally
// from any failure.
func (t TimeBoxed) Summarize(ctx context.Context, stage string, schedule *model.Schedule, kpi model.KPI) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := t.Inner.Summarize(ctx, stage, schedule, kpi)
		done <- outcome{text: text, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if t.Log != nil {
				t.Log.Warnf("advisory unavailable for stage %s: %v", stage, out.err)
			}
			return t.Fallback, nil
		}
		return out.text, nil
	case <-ctx.Done():
		if t.Log != nil {
			t.Log.Warnf("advisory timed out for stage %s", stage)
		}
		return t.Fallback, nil
	}
}
