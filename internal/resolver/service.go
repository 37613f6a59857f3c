package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resolver/internal/match"
	"resolver/pkg/archive"
	"resolver/pkg/domain"
	"resolver/pkg/logger"
	"resolver/pkg/metrics"
	"resolver/pkg/pdftext"
	"resolver/pkg/registry"
	"resolver/pkg/serrors"
	"resolver/pkg/storage"

	"go.uber.org/zap"
)

// pagination bounds for Resolutions.
const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Options tune the resolution pipeline.
type Options struct {
	// ViabilityFloor is passed through to the matcher.
	ViabilityFloor float64
	// ResultTTL is how long a completed resolution is served from storage
	// instead of enqueueing new portal work. Zero disables reuse.
	ResultTTL time.Duration
	// MaxAttempts bounds how often a resolution job may fail before the
	// resolution rows are marked failed for good.
	MaxAttempts int
	// DocumentTypes restricts which register documents are fetched for the
	// winning candidate. Empty means the current printout only.
	DocumentTypes []domain.DocumentType
}

type service struct {
	strg     storage.Storage
	registry registry.Client
	archive  *archive.Archive
	opts     Options
}

// New constructs the resolution service. The archive may be nil, in which
// case documents are kept in the stored result only.
func New(strg storage.Storage, registryClient registry.Client, arc *archive.Archive, opts Options) Service {
	if len(opts.DocumentTypes) == 0 {
		opts.DocumentTypes = []domain.DocumentType{domain.DocumentTypeAD}
	}

	return &service{
		strg:     strg,
		registry: registryClient,
		archive:  arc,
		opts:     opts,
	}
}

func (s *service) Enqueue(ctx context.Context, companyName, registrationNumber string) (*domain.Resolution, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "company name is required")
	}

	// people paste the register number into the name field all the time
	if registrationNumber == "" {
		if id := match.ExtractIdentifier(companyName); id != nil {
			registrationNumber = id.String()
			logger.Debug(ctx, "extracted registration number from company name",
				zap.String("registrationNumber", registrationNumber))
		}
	}

	queryKey := QueryKey(companyName, registrationNumber)
	ctx = logger.WithFields(ctx, zap.String("queryKey", queryKey))

	if s.opts.ResultTTL > 0 {
		last, err := s.strg.LastCompletedResolutionByQueryKey(ctx, queryKey)
		if err != nil {
			return nil, fmt.Errorf("could not look up cached resolution: %w", err)
		}
		if last != nil && time.Since(last.UpdatedAt) < s.opts.ResultTTL {
			logger.Info(ctx, "serving cached resolution",
				zap.Time("resolvedAt", last.UpdatedAt))
			metrics.ResolutionCacheHits.Add(ctx, 1)

			return last, nil
		}
	}

	var stored *domain.Resolution
	err := s.strg.WithTx(ctx, func(tx storage.AllStorage) error {
		rows, err := tx.StoreResolutions(ctx, domain.Resolution{
			CompanyName:        companyName,
			RegistrationNumber: registrationNumber,
			QueryKey:           queryKey,
			Status:             domain.ResolutionStatusPending,
		})
		if err != nil {
			return err //nolint: wrapcheck
		}
		stored = &rows[0]

		inserted, err := tx.AddJob(ctx, JobArgs{
			CompanyName:        companyName,
			RegistrationNumber: registrationNumber,
			QueryKey:           queryKey,
		}, nil)
		if err != nil {
			return err //nolint: wrapcheck
		}
		if !inserted {
			logger.Debug(ctx, "resolution job already queued, joining it")
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not enqueue resolution: %w", err)
	}

	metrics.ResolutionsEnqueued.Add(ctx, 1)

	return stored, nil
}

func (s *service) Resolutions(ctx context.Context,
	status domain.ResolutionStatus,
	cursor time.Time,
	limit uint) (storage.ResolutionPage, error) {
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	page, err := s.strg.Resolutions(ctx, status, cursor, limit)
	if err != nil {
		return storage.ResolutionPage{}, fmt.Errorf("could not list resolutions: %w", err)
	}

	return page, nil
}

func (s *service) Resolution(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error) {
	res, err := s.strg.ResolutionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not fetch resolution: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "resolution not found")
	}

	return res, nil
}

func (s *service) Delete(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error) {
	res, err := s.strg.DeleteResolution(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not delete resolution: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "resolution not found")
	}

	return res, nil
}

// Lookup runs the search / match / document pipeline once.
func (s *service) Lookup(ctx context.Context, companyName, registrationNumber string) (*domain.ResolutionResult, error) {
	candidates, err := s.search(ctx, companyName, registrationNumber)
	if err != nil {
		return nil, err
	}

	scored, err := match.Resolve(ctx,
		match.Query{Name: companyName, Identifier: registrationNumber},
		candidates,
		match.Options{ViabilityFloor: s.opts.ViabilityFloor})
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	logger.Info(ctx, "matched candidate",
		zap.String("name", scored.Candidate.Name),
		zap.String("registrationNumber", scored.Candidate.RegistrationNumber),
		zap.Float64("finalScore", scored.FinalScore),
		zap.Bool("nameOnly", scored.NameOnly))

	return &domain.ResolutionResult{
		Company: &scored.Candidate,
		Match: &domain.MatchDetails{
			NameScore:         scored.NameScore,
			RegistrationBonus: scored.RegistrationBonus,
			FinalScore:        scored.FinalScore,
			NameOnly:          scored.NameOnly,
		},
		Documents: s.fetchDocuments(ctx, scored.Candidate),
	}, nil
}

// search queries the portal. A parsed registration number is the more precise
// search term; when it yields nothing the name is tried as well before the
// result is accepted as empty.
func (s *service) search(ctx context.Context, companyName, registrationNumber string) ([]domain.Company, error) {
	if id := match.ParseIdentifier(registrationNumber); id != nil {
		query := fmt.Sprintf("%s %s", id.Registry, id.Number)
		candidates, err := s.registry.Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("could not search register: %w", err)
		}
		if len(candidates) > 0 {
			return candidates, nil
		}

		logger.Debug(ctx, "registration number search yielded nothing, searching by name",
			zap.String("query", query))
	}

	candidates, err := s.registry.Search(ctx, companyName)
	if err != nil {
		return nil, fmt.Errorf("could not search register: %w", err)
	}

	return candidates, nil
}

// fetchDocuments downloads and converts the configured document types offered
// by the winning candidate. Document failures are logged and skipped; the
// match result is worth returning even when the portal refuses the printouts.
func (s *service) fetchDocuments(ctx context.Context, company domain.Company) []domain.Document {
	var docs []domain.Document
	for _, dt := range s.opts.DocumentTypes {
		linkID, ok := company.DocumentLinks[dt]
		if !ok {
			continue
		}

		pdfData, err := s.registry.FetchDocument(ctx, linkID)
		if err != nil {
			logger.Warn(ctx, "could not fetch document",
				zap.String("type", string(dt)), zap.Error(err))

			continue
		}

		markdown, err := pdftext.ToMarkdown(pdfData, fmt.Sprintf("%s (%s)", company.Name, dt))
		if err != nil {
			logger.Warn(ctx, "could not extract document text",
				zap.String("type", string(dt)), zap.Error(err))

			continue
		}

		doc := domain.Document{
			Type:        dt,
			CompanyName: company.Name,
			Markdown:    markdown,
		}
		if s.archive != nil {
			pdfPath, err := s.archive.SaveDocument(company.Name, dt, pdfData, markdown)
			if err != nil {
				logger.Warn(ctx, "could not archive document",
					zap.String("type", string(dt)), zap.Error(err))
			} else {
				doc.PDFPath = pdfPath
			}
		}

		docs = append(docs, doc)
		metrics.DocumentsFetched.Add(ctx, 1)
	}

	return docs
}

// Process executes one background job and persists its outcome on every
// pending resolution sharing the query key.
//
// Error contract towards the worker: transient portal errors (rate limited,
// unavailable) are returned untouched with the rows left pending so the job
// layer can snooze or retry; definitive failures mark the rows failed once
// the attempt budget is spent and are returned for the job layer to cancel or
// retry.
func (s *service) Process(ctx context.Context, args JobArgs) error {
	ctx = logger.WithFields(ctx,
		zap.String("companyName", args.CompanyName),
		zap.String("queryKey", args.QueryKey))

	result, err := s.Lookup(ctx, args.CompanyName, args.RegistrationNumber)
	if err != nil {
		if errors.Is(err, serrors.ErrRateLimited) || errors.Is(err, serrors.ErrUnavailable) {
			return err
		}

		metrics.ResolutionsFailed.Add(ctx, 1)

		msg := err.Error()
		if updateErr := s.strg.UpdatePendingResolutionsByQueryKey(ctx, args.QueryKey, storage.ResolutionUpdates{
			Status:      domain.ResolutionStatusFailed,
			LastError:   &msg,
			MaxAttempts: s.opts.MaxAttempts,
		}); updateErr != nil {
			logger.Error(ctx, "could not record resolution failure", zap.Error(updateErr))
		}

		return err
	}

	empty := ""
	if err := s.strg.UpdatePendingResolutionsByQueryKey(ctx, args.QueryKey, storage.ResolutionUpdates{
		Status:    domain.ResolutionStatusCompleted,
		Result:    result,
		LastError: &empty,
	}); err != nil {
		return fmt.Errorf("could not store resolution result: %w", err)
	}

	metrics.ResolutionsCompleted.Add(ctx, 1)

	return nil
}
