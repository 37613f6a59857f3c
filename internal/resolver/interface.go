// Package resolver implements the company resolution service: it accepts
// resolution requests, deduplicates them by canonical query key, runs the
// portal search / matching / document pipeline in background jobs and serves
// the stored outcomes.
package resolver

import (
	"context"
	"time"

	"resolver/pkg/domain"
	"resolver/pkg/storage"
)

// Service is the application-facing API for company resolutions.
type Service interface {
	// Enqueue registers a resolution request for the given company name and
	// optional registration number. A fresh completed resolution for the same
	// canonical query is returned directly instead of enqueueing new work.
	Enqueue(ctx context.Context, companyName, registrationNumber string) (*domain.Resolution, error)
	// Resolutions returns a page of resolutions, optionally filtered by status.
	Resolutions(ctx context.Context,
		status domain.ResolutionStatus,
		cursor time.Time,
		limit uint) (storage.ResolutionPage, error)
	// Resolution fetches a single resolution by id.
	Resolution(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error)
	// Delete soft-deletes a resolution by id.
	Delete(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error)

	// Lookup runs the full search / match / document pipeline once, without
	// touching storage. It is what the one-shot CLI uses.
	Lookup(ctx context.Context, companyName, registrationNumber string) (*domain.ResolutionResult, error)
	// Process executes one background job: it runs Lookup and persists the
	// outcome on all pending resolutions sharing the job's query key.
	Process(ctx context.Context, args JobArgs) error
}
