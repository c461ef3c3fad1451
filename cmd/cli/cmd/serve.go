package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperpart/internal/scheduler"
	"github.com/hyperpart/internal/service"
	"github.com/hyperpart/pkg/config"
	"github.com/hyperpart/pkg/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coarsening daemon",
	Long: `Serve polls the run queue in the configured database and processes
queued coarsening runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		logger.Warn("Telemetry disabled: %v", err)
	} else {
		defer shutdown(context.Background())
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	svc := service.New(cfg, logger)
	if err := svc.Initialize(ctx); err != nil {
		return err
	}
	defer svc.Close()

	processor := scheduler.NewServiceProcessor(svc, svc.Repos().Runs, logger)
	sched := scheduler.New(scheduler.FromConfig(&cfg.Scheduler), svc.Repos().Runs, processor, logger)

	logger.Info("Daemon started, waiting for queued runs")
	sched.Start(ctx)
	return nil
}
