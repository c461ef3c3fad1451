package scheduler

import (
	"context"
	"time"

	"github.com/hyperpart/internal/repository"
	"github.com/hyperpart/internal/service"
	"github.com/hyperpart/pkg/model"
	"github.com/hyperpart/pkg/utils"
)

// ServiceProcessor processes runs through the coarsening service and
// persists their outcome.
type ServiceProcessor struct {
	svc    *service.Service
	repo   repository.RunRepository
	logger utils.Logger
}

// NewServiceProcessor creates a processor backed by the service.
func NewServiceProcessor(svc *service.Service, repo repository.RunRepository, logger utils.Logger) *ServiceProcessor {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &ServiceProcessor{
		svc:    svc,
		repo:   repo,
		logger: logger,
	}
}

// Process executes the coarsening pipeline for a claimed run and stores the
// resulting statistics.
func (p *ServiceProcessor) Process(ctx context.Context, run *model.Run) error {
	report, err := p.svc.Execute(ctx, service.RunRequest{
		RunUUID:      run.RunUUID,
		InputKey:     run.InputKey,
		CommunityKey: run.CommunityKey,
	})
	if err != nil {
		return err
	}

	timings := make([]model.PhaseTiming, len(report.Timings))
	copy(timings, report.Timings)

	if err := p.repo.CompleteRun(ctx, run.ID, report.Stats, timings); err != nil {
		p.logger.Error("Failed to persist run %s: %v", run.RunUUID, err)
		return err
	}

	p.logger.Info("Run %s: %d -> %d hypernodes in %s",
		run.RunUUID, report.Stats.InitialNodes, report.Stats.CoarseNodes, totalDuration(timings))
	return nil
}

func totalDuration(timings []model.PhaseTiming) time.Duration {
	var total time.Duration
	for _, t := range timings {
		total += time.Duration(t.DurationMs) * time.Millisecond
	}
	return total
}
