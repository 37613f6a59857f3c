package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resolver/pkg/domain"
	"resolver/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	resolutionsTable = "resolutions"
)

func (p *PgSQL) StoreResolutions(ctx context.Context, resolutions ...domain.Resolution) ([]domain.Resolution, error) {
	if len(resolutions) == 0 {
		return nil, nil
	}

	pgResolutions, err := domainResolutionsToPg(resolutions)
	if err != nil {
		return nil, err
	}

	var result []PgResolution
	if err := p.Builder.Insert(resolutionsTable).
		Rows(pgResolutions).
		Returning(&PgResolution{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store resolutions into pg: %w", err)
	}

	return pgResolutionsToDomain(result)
}

// updateRecord builds the goqu record shared by the update paths: attempts are
// incremented, updated_at is refreshed and only provided fields are touched.
func updateRecord(updates storage.ResolutionUpdates) (goqu.Record, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		"attempts":   goqu.L("attempts + 1"),
		"status":     updates.Status,
	}
	if updates.Status == domain.ResolutionStatusFailed && updates.MaxAttempts > 0 {
		// only fail for good once the attempt budget is spent, otherwise the
		// row stays pending for the next retry
		rec["status"] = goqu.L("CASE WHEN attempts + 1 >= ? THEN ? ELSE status END",
			updates.MaxAttempts, string(domain.ResolutionStatusFailed))
	}
	if updates.Result != nil {
		b, err := json.Marshal(updates.Result)
		if err != nil {
			return nil, fmt.Errorf("could not marshal result: %w", err)
		}

		rec["result"] = b
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			// set to NULL when empty string provided
			rec["last_error"] = goqu.L("NULL")
		} else {
			rec["last_error"] = *updates.LastError
		}
	}

	return rec, nil
}

// UpdatePendingResolutionsByQueryKey updates all pending resolutions for the
// given query key with provided fields. Attempts is incremented by 1 and
// updated_at is set.
func (p *PgSQL) UpdatePendingResolutionsByQueryKey(ctx context.Context,
	queryKey string,
	updates storage.ResolutionUpdates) error {
	rec, err := updateRecord(updates)
	if err != nil {
		return err
	}

	_, err = p.Builder.Update(resolutionsTable).
		Set(rec).Where(
		goqu.I("query_key").Eq(queryKey),
		goqu.I("status").Eq(string(domain.ResolutionStatusPending)),
		goqu.I("deleted_at").IsNull(),
	).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not update pending resolutions by query key in pg: %w", err)
	}

	return nil
}

// PendingResolutionCountByQueryKey counts pending, not soft-deleted
// resolutions for the given query key.
func (p *PgSQL) PendingResolutionCountByQueryKey(ctx context.Context, queryKey string) (int64, error) {
	count, err := p.Builder.From(resolutionsTable).
		Where(
			goqu.I("query_key").Eq(queryKey),
			goqu.I("status").Eq(string(domain.ResolutionStatusPending)),
			goqu.I("deleted_at").IsNull(),
		).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not count pending resolutions by query key in pg: %w", err)
	}

	return count, nil
}

// UpdateResolutionByID updates a single resolution by its ID and returns the
// updated row, or nil when no live row matched.
func (p *PgSQL) UpdateResolutionByID(ctx context.Context,
	id domain.ResolutionID,
	updates storage.ResolutionUpdates) (*domain.Resolution, error) {
	rec, err := updateRecord(updates)
	if err != nil {
		return nil, err
	}

	var row PgResolution
	found, err := p.Builder.Update(resolutionsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgResolution{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update resolution by id in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// DeleteResolution performs a soft delete by setting deleted_at timestamp
// for a given resolution id, returning the deleted record.
func (p *PgSQL) DeleteResolution(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error) {
	var row PgResolution
	found, err := p.Builder.Update(resolutionsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgResolution{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete resolution in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// Resolutions returns a list of resolutions filtered by optional status and
// cursor and limited by limit. Results are ordered by created_at DESC, id
// DESC. Returns a next cursor for pagination.
func (p *PgSQL) Resolutions(ctx context.Context,
	status domain.ResolutionStatus,
	cursor time.Time,
	limit uint) (storage.ResolutionPage, error) {
	w := []goqu.Expression{
		goqu.I("deleted_at").IsNull(),
	}
	if status != "" {
		w = append(w, goqu.I("status").Eq(string(status)))
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(resolutionsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgResolution
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.ResolutionPage{}, fmt.Errorf("could not fetch resolutions from pg: %w", err)
	}

	// if we fetched more than the limit, there is a next page
	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	domainRows, err := pgResolutionsToDomain(rows)
	if err != nil {
		return storage.ResolutionPage{}, err
	}

	return storage.ResolutionPage{
		Resolutions: domainRows,
		NextCursor:  nextCursor,
	}, nil
}

// ResolutionByID returns a resolution by its ID, excluding soft-deleted rows.
func (p *PgSQL) ResolutionByID(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error) {
	var row PgResolution
	found, err := p.Builder.From(resolutionsTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch resolution by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// LastCompletedResolutionByQueryKey returns the most recent completed
// resolution for a query key, or nil when none exists.
func (p *PgSQL) LastCompletedResolutionByQueryKey(ctx context.Context, queryKey string) (*domain.Resolution, error) {
	var row PgResolution
	found, err := p.Builder.From(resolutionsTable).
		Where(
			goqu.I("query_key").Eq(queryKey),
			goqu.I("status").Eq(string(domain.ResolutionStatusCompleted)),
			goqu.I("deleted_at").IsNull(),
		).
		Order(goqu.I("updated_at").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch last completed resolution by query key: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}
