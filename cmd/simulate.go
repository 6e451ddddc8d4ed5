package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopfloor/shiftplan/app"
	"github.com/shopfloor/shiftplan/config"
	"github.com/shopfloor/shiftplan/core/model"
	"github.com/shopfloor/shiftplan/infra/logger"
	"github.com/shopfloor/shiftplan/internal/gen"
)

var (
	simJobs int
	simRush float64
	simSeed int64
	simAt   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Plan a random job set, inject a machine failure and re-optimize",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simJobs, "jobs", 8, "number of random jobs")
	simulateCmd.Flags().Float64Var(&simRush, "rush", 0.3, "rush job probability")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed, 0 picks one")
	simulateCmd.Flags().StringVar(&simAt, "at", "09:00", "time of day the failure is noticed")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	now, err := model.ParseTimeOfDay(simAt)
	if err != nil {
		return fmt.Errorf("at: %w", err)
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

	seed := simSeed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))
	logg := logger.New("simulate-command")
	logg.Infof("simulating with seed %d", seed)

	machines := svc.Machines
	if len(machines) == 0 {
		machines = gen.DemoMachines()
		svc.Machines = machines
		svc.Constraint = gen.DemoConstraint()
	}
	jobs := gen.RandomJobs(rng, simJobs, simRush, machines, svc.Constraint)

	sess := svc.NewSession(jobs)
	res, err := svc.Pipeline.Run(ctx, sess, "orchestrated")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "--- initial plan ---")
	printResult(out, res)

	machineID, window := gen.RandomDowntime(rng, sess.Machines, sess.Constraint)
	if err := sess.AddDowntime(machineID, window); err != nil {
		return fmt.Errorf("inject downtime: %w", err)
	}
	fmt.Fprintf(out, "\n--- %s down %s-%s, re-optimizing from %s ---\n", machineID, window.Start, window.End, now)

	reres, err := svc.Pipeline.Reoptimize(ctx, sess, res.Selected.Schedule, now, "orchestrated")
	if err != nil {
		return err
	}
	printResult(out, reres)
	return nil
}
