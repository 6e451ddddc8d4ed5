package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopfloor/shiftplan/app"
	"github.com/shopfloor/shiftplan/config"
	"github.com/shopfloor/shiftplan/core/orchestrator"
	"github.com/shopfloor/shiftplan/infra/ingest"
	"github.com/shopfloor/shiftplan/infra/logger"
)

var (
	jobsPath     string
	downtimePath string
	strategy     string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build and validate a shift schedule from a job CSV",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&jobsPath, "jobs", "jobs.csv", "job list CSV")
	planCmd.Flags().StringVar(&downtimePath, "downtime", "", "optional downtime CSV")
	planCmd.Flags().StringVar(&strategy, "strategy", "orchestrated", "baseline, batching, balanced or orchestrated")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, err := orchestrator.ParseMode(strategy)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	go svc.StartMetricsServer(ctx)

	logg := logger.New("plan-command")
	jobs, rejected, err := ingest.ReadJobs(jobsPath)
	if err != nil {
		return fmt.Errorf("read jobs: %w", err)
	}

	sess := svc.NewSession(jobs)
	for _, r := range rejected {
		logg.Warnf("jobs line %d rejected: %s", r.Line, r.Reason)
		sess.RejectInput(r.JobID, r.Reason)
	}

	if downtimePath != "" {
		entries, badRows, err := ingest.ReadDowntime(downtimePath)
		if err != nil {
			return fmt.Errorf("read downtime: %w", err)
		}
		for _, r := range badRows {
			logg.Warnf("downtime line %d rejected: %s", r.Line, r.Reason)
		}
		for _, e := range entries {
			if err := sess.AddDowntime(e.MachineID, e.Window); err != nil {
				logg.Warnf("downtime for %s skipped: %v", e.MachineID, err)
			}
		}
	}

	res, err := svc.Pipeline.Run(ctx, sess, mode)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}
