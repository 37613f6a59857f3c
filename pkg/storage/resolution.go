package storage

import (
	"context"
	"time"

	"resolver/pkg/domain"
)

// ResolutionUpdates describes a set of optional fields that can be applied to
// an existing resolution during an update. Only non-nil fields will be updated.
type ResolutionUpdates struct {
	// Status is the new status to set for the resolution.
	Status domain.ResolutionStatus
	// Result, when provided, replaces the stored resolution result payload.
	Result *domain.ResolutionResult
	// LastError, when provided, sets the last error text. An empty string value
	// indicates the error should be cleared (set to NULL).
	LastError *string
	// MaxAttempts, when provided alongside a Failed status, ensures that status
	// is only updated to Failed if the current attempts after increment would
	// exceed this threshold. A value <= 0 disables this guard.
	MaxAttempts int
}

// ResolutionPage groups a page of resolutions together with an optional
// NextCursor used for pagination.
type ResolutionPage struct {
	// Resolutions contains the current page of resolution records.
	Resolutions []domain.Resolution
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// ResolutionStorage defines CRUD and query operations related to resolutions.
// Implementations should ensure idempotency and proper handling of
// soft-deletes where applicable.
type ResolutionStorage interface {
	// StoreResolutions inserts one or more resolutions and returns the stored
	// rows as they exist in the database (including generated fields).
	StoreResolutions(ctx context.Context, resolutions ...domain.Resolution) ([]domain.Resolution, error)
	// UpdatePendingResolutionsByQueryKey updates all pending resolutions for the
	// given query key using the provided field set.
	// Notes:
	// - Attempts is incremented by 1 and updated_at is set automatically.
	// - If Status is Failed and MaxAttempts > 0, status is only set to Failed
	//   when the attempts after increment would exceed MaxAttempts; otherwise
	//   status remains unchanged (i.e., stays Pending).
	UpdatePendingResolutionsByQueryKey(ctx context.Context, queryKey string, updates ResolutionUpdates) error
	// PendingResolutionCountByQueryKey returns the total number of pending
	// resolutions for the given query key. Soft-deleted records are excluded
	// from the count.
	PendingResolutionCountByQueryKey(ctx context.Context, queryKey string) (int64, error)
	// UpdateResolutionByID updates a single resolution identified by its ID and
	// returns the updated row. The update ignores soft-deleted rows and sets
	// updated_at automatically. Only provided fields are changed.
	UpdateResolutionByID(ctx context.Context, id domain.ResolutionID, updates ResolutionUpdates) (*domain.Resolution, error)
	// DeleteResolution performs a soft delete for the given resolution ID and
	// returns the deleted resolution, or nil if it was not found.
	DeleteResolution(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error)
	// Resolutions returns a page of resolutions created before the optional
	// cursor time, limited by the given limit. If status is non-empty, results
	// are filtered to records with the given status.
	Resolutions(ctx context.Context,
		status domain.ResolutionStatus,
		cursor time.Time,
		limit uint) (ResolutionPage, error)
	// ResolutionByID fetches a resolution by its ID, excluding soft-deleted
	// records. Returns nil when not found.
	ResolutionByID(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error)
	// LastCompletedResolutionByQueryKey returns the most recent completed
	// resolution for a given query key. Returns nil when no completed
	// resolution exists for the key.
	LastCompletedResolutionByQueryKey(ctx context.Context, queryKey string) (*domain.Resolution, error)
}
