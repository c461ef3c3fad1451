// Package scheduler polls the run queue and dispatches coarsening runs to a
// bounded pool of workers.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/hyperpart/internal/repository"
	"github.com/hyperpart/pkg/config"
	"github.com/hyperpart/pkg/model"
	"github.com/hyperpart/pkg/utils"
)

// RunProcessor processes a single claimed run.
type RunProcessor interface {
	Process(ctx context.Context, run *model.Run) error
}

// Config holds scheduler configuration.
type Config struct {
	PollInterval time.Duration // how often to poll for queued runs
	WorkerCount  int           // number of concurrent workers
	RunBatchSize int           // max runs to fetch per poll
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 2 * time.Second,
		WorkerCount:  4,
		RunBatchSize: 10,
	}
}

// FromConfig creates scheduler config from application config.
func FromConfig(cfg *config.SchedulerConfig) *Config {
	c := DefaultConfig()
	if cfg.PollInterval > 0 {
		c.PollInterval = time.Duration(cfg.PollInterval) * time.Second
	}
	if cfg.WorkerCount > 0 {
		c.WorkerCount = cfg.WorkerCount
	}
	if cfg.RunBatchSize > 0 {
		c.RunBatchSize = cfg.RunBatchSize
	}
	return c
}

// Scheduler claims queued runs and hands them to the processor.
type Scheduler struct {
	cfg       *Config
	repo      repository.RunRepository
	processor RunProcessor
	logger    utils.Logger

	slots    chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new Scheduler.
func New(cfg *Config, repo repository.RunRepository, processor RunProcessor, logger utils.Logger) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &Scheduler{
		cfg:       cfg,
		repo:      repo,
		processor: processor,
		logger:    logger,
		slots:     make(chan struct{}, cfg.WorkerCount),
		stopCh:    make(chan struct{}),
	}
}

// Start polls for queued runs until the context is canceled or Stop is
// called. It blocks; run it on its own goroutine for daemon use.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Scheduler started: poll %v, %d workers", s.cfg.PollInterval, s.cfg.WorkerCount)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case <-s.stopCh:
			s.drain()
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// Stop signals the scheduler to finish in-flight runs and return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// drain waits for all in-flight runs to finish.
func (s *Scheduler) drain() {
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// pollOnce claims a batch of queued runs and dispatches each to a worker
// slot. Dispatch blocks when all slots are busy, which throttles polling.
func (s *Scheduler) pollOnce(ctx context.Context) {
	runs := s.claimQueuedRuns(ctx)
	for _, run := range runs {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case s.slots <- struct{}{}:
		}

		s.wg.Add(1)
		go func(run *model.Run) {
			defer s.wg.Done()
			defer func() { <-s.slots }()
			s.processRun(ctx, run)
		}(run)
	}
}

// processRun runs the processor and records the failure state; the
// processor records success itself.
func (s *Scheduler) processRun(ctx context.Context, run *model.Run) {
	log := s.logger.WithField("run", run.RunUUID)
	log.Info("Processing run %d", run.ID)

	if err := s.processor.Process(ctx, run); err != nil {
		log.Error("Run failed: %v", err)
		if updateErr := s.repo.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed, err.Error()); updateErr != nil {
			log.Error("Failed to record failure: %v", updateErr)
		}
		return
	}
	log.Info("Run completed")
}
