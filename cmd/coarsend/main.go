// Command coarsend is the standalone coarsening daemon: it claims queued
// runs from the database and processes them until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperpart/internal/scheduler"
	"github.com/hyperpart/internal/service"
	"github.com/hyperpart/pkg/config"
	"github.com/hyperpart/pkg/telemetry"
	"github.com/hyperpart/pkg/utils"
)

var (
	configPath = flag.String("c", "", "Path to configuration file")
	version    = flag.Bool("v", false, "Print version and exit")
)

// Version information (set by build flags).
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("coarsend version %s (commit: %s)\n", Version, GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewDefaultLogger(utils.ParseLevel(cfg.Log.Level), os.Stdout)
	if cfg.Log.OutputPath != "" {
		fileLogger, err := utils.NewFileLogger(utils.ParseLevel(cfg.Log.Level), cfg.Log.OutputPath)
		if err != nil {
			logger.Error("Failed to open log file: %v", err)
			os.Exit(1)
		}
		logger = fileLogger
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting coarsend %s", Version)

	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		logger.Warn("Telemetry disabled: %v", err)
	} else {
		defer shutdown(context.Background())
	}

	svc := service.New(cfg, logger)
	if err := svc.Initialize(ctx); err != nil {
		logger.Error("Failed to initialize service: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	processor := scheduler.NewServiceProcessor(svc, svc.Repos().Runs, logger)
	sched := scheduler.New(scheduler.FromConfig(&cfg.Scheduler), svc.Repos().Runs, processor, logger)

	sched.Start(ctx)
	logger.Info("coarsend stopped")
}
