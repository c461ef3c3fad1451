package scheduler

import (
	"context"

	"github.com/hyperpart/pkg/model"
)

// claimQueuedRuns fetches a batch of queued runs and atomically claims each
// one. Runs another instance claimed first are skipped silently; the
// database lock decides ownership, not the poll order.
func (s *Scheduler) claimQueuedRuns(ctx context.Context) []*model.Run {
	runs, err := s.repo.GetQueuedRuns(ctx, s.cfg.RunBatchSize)
	if err != nil {
		s.logger.Error("Failed to fetch queued runs: %v", err)
		return nil
	}

	claimed := make([]*model.Run, 0, len(runs))
	for _, run := range runs {
		locked, err := s.repo.LockRunForProcessing(ctx, run.ID)
		if err != nil {
			s.logger.Error("Failed to lock run %d: %v", run.ID, err)
			continue
		}
		if !locked {
			continue
		}
		claimed = append(claimed, run)
	}
	return claimed
}
