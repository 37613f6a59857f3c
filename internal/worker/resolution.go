package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resolver/internal/resolver"
	"resolver/pkg/logger"
	"resolver/pkg/serrors"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// ResolutionWorker is the River worker for resolution jobs. It delegates the
// actual work to the resolution service and maps its error contract onto
// River actions:
//
//   - rate limited / portal unavailable: the service left the resolution rows
//     pending, so the job is snoozed and tried again later without consuming
//     an attempt.
//   - any other error: the service has already recorded the failure on the
//     rows, so the error is returned and River's retry policy decides whether
//     the job runs again.
type ResolutionWorker struct {
	river.WorkerDefaults[resolver.JobArgs]

	svc    resolver.Service
	snooze time.Duration
}

// NewResolutionWorker constructs a ResolutionWorker that snoozes transient
// portal errors for the given delay.
func NewResolutionWorker(svc resolver.Service, snooze time.Duration) *ResolutionWorker {
	return &ResolutionWorker{
		svc:    svc,
		snooze: snooze,
	}
}

// Work executes a single resolution job.
func (w *ResolutionWorker) Work(ctx context.Context, job *river.Job[resolver.JobArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("companyName", job.Args.CompanyName))

	if err := w.svc.Process(ctx, job.Args); err != nil {
		if errors.Is(err, serrors.ErrRateLimited) || errors.Is(err, serrors.ErrUnavailable) {
			logger.Warn(ctx, "portal unavailable, snoozing job",
				zap.Duration("snooze", w.snooze), zap.Error(err))

			return river.JobSnooze(w.snooze) //nolint: wrapcheck
		}

		logger.Error(ctx, "error resolving company", zap.Error(err))

		return fmt.Errorf("could not resolve company: %w", err)
	}

	logger.Info(ctx, "company resolved successfully")

	return nil
}
