package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"resolver/pkg/domain"

	"github.com/google/uuid"
)

type PgResolution struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	CompanyName        string         `db:"company_name"`
	RegistrationNumber sql.NullString `db:"registration_number"`
	QueryKey           string         `db:"query_key"`

	Status string          `db:"status"`
	Result json.RawMessage `db:"result" goqu:"skipinsert"`

	Attempts  uint           `db:"attempts"   goqu:"skipinsert"`
	LastError sql.NullString `db:"last_error" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgResolution) ToDomain() (*domain.Resolution, error) {
	var result domain.ResolutionResult
	if len(p.Result) > 0 {
		if err := json.Unmarshal(p.Result, &result); err != nil {
			return nil, fmt.Errorf("could not unmarshal resolution result: %w", err)
		}
	}

	return &domain.Resolution{
		ID:                 domain.ResolutionID(p.ID),
		CompanyName:        p.CompanyName,
		RegistrationNumber: p.RegistrationNumber.String,
		QueryKey:           p.QueryKey,
		Status:             domain.ResolutionStatus(p.Status),
		Result:             result,
		Attempts:           p.Attempts,
		LastError:          p.LastError.String,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt.Time,
		DeletedAt:          p.DeletedAt.Time,
	}, nil
}

func (p *PgResolution) FromDomain(resolution domain.Resolution) error {
	result, err := json.Marshal(resolution.Result)
	if err != nil {
		return fmt.Errorf("could not marshal resolution result: %w", err)
	}

	*p = PgResolution{
		ID:          uuid.UUID(resolution.ID),
		CompanyName: resolution.CompanyName,
		RegistrationNumber: sql.NullString{
			String: resolution.RegistrationNumber,
			Valid:  resolution.RegistrationNumber != "",
		},
		QueryKey: resolution.QueryKey,
		Status:   string(resolution.Status),
		Result:   result,
		Attempts: resolution.Attempts,
		LastError: sql.NullString{
			String: resolution.LastError,
			Valid:  resolution.LastError != "",
		},
		CreatedAt: resolution.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  resolution.UpdatedAt,
			Valid: !resolution.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  resolution.DeletedAt,
			Valid: !resolution.DeletedAt.IsZero(),
		},
	}

	return nil
}

func domainResolutionsToPg(resolutions []domain.Resolution) ([]PgResolution, error) {
	out := make([]PgResolution, len(resolutions))
	for i := range out {
		if err := out[i].FromDomain(resolutions[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func pgResolutionsToDomain(resolutions []PgResolution) ([]domain.Resolution, error) {
	out := make([]domain.Resolution, 0, len(resolutions))
	for _, resolution := range resolutions {
		d, err := resolution.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
