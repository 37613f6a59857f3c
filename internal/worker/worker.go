// Package worker runs resolution jobs from the River queue against the
// resolution service.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resolver/internal/resolver"
	"resolver/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Options configure the job runner.
type Options struct {
	// MaxWorkers is the number of resolution jobs processed concurrently.
	// The portal tolerates little parallelism.
	MaxWorkers int
	// MaxAttempts bounds how often a job is retried. It should match the
	// attempt budget of the resolution service so the job queue and the stored
	// resolutions give up together.
	MaxAttempts int
	// SnoozeDelay is how long a job sleeps after the portal reported itself
	// rate limited or unavailable. The portal sends no reset headers, so the
	// delay is a fixed guess.
	SnoozeDelay time.Duration
}

// Start registers the resolution worker and starts the River client on the
// given pool. The returned client must be stopped by the caller on shutdown.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	svc resolver.Service,
	opts Options) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewResolutionWorker(svc, opts.SnoozeDelay))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: opts.MaxWorkers},
		},
		MaxAttempts: opts.MaxAttempts,
		Workers:     workers,
		Logger:      slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
