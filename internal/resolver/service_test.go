package resolver_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"resolver/internal/resolver"
	"resolver/pkg/domain"
	"resolver/pkg/logger"
	"resolver/pkg/serrors"
	"resolver/pkg/storage"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	os.Exit(m.Run())
}

// fakeStorage implements storage.Storage with overridable behavior per method.
// Unset methods return zero values; WithTx runs the callback against the fake
// itself.
type fakeStorage struct {
	storeResolutions                   func(ctx context.Context, resolutions ...domain.Resolution) ([]domain.Resolution, error)
	updatePendingResolutionsByQueryKey func(ctx context.Context, queryKey string, updates storage.ResolutionUpdates) error
	resolutions                        func(ctx context.Context,
		status domain.ResolutionStatus, cursor time.Time, limit uint) (storage.ResolutionPage, error)
	resolutionByID                    func(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error)
	deleteResolution                  func(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error)
	lastCompletedResolutionByQueryKey func(ctx context.Context, queryKey string) (*domain.Resolution, error)
	addJob                            func(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}

func (f *fakeStorage) StoreResolutions(ctx context.Context,
	resolutions ...domain.Resolution) ([]domain.Resolution, error) {
	if f.storeResolutions == nil {
		return resolutions, nil
	}

	return f.storeResolutions(ctx, resolutions...)
}

func (f *fakeStorage) UpdatePendingResolutionsByQueryKey(ctx context.Context,
	queryKey string, updates storage.ResolutionUpdates) error {
	if f.updatePendingResolutionsByQueryKey == nil {
		return nil
	}

	return f.updatePendingResolutionsByQueryKey(ctx, queryKey, updates)
}

func (f *fakeStorage) PendingResolutionCountByQueryKey(context.Context, string) (int64, error) {
	return 0, nil
}

func (f *fakeStorage) UpdateResolutionByID(context.Context,
	domain.ResolutionID, storage.ResolutionUpdates) (*domain.Resolution, error) {
	return nil, nil
}

func (f *fakeStorage) DeleteResolution(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error) {
	if f.deleteResolution == nil {
		return nil, nil
	}

	return f.deleteResolution(ctx, id)
}

func (f *fakeStorage) Resolutions(ctx context.Context,
	status domain.ResolutionStatus, cursor time.Time, limit uint) (storage.ResolutionPage, error) {
	if f.resolutions == nil {
		return storage.ResolutionPage{}, nil
	}

	return f.resolutions(ctx, status, cursor, limit)
}

func (f *fakeStorage) ResolutionByID(ctx context.Context, id domain.ResolutionID) (*domain.Resolution, error) {
	if f.resolutionByID == nil {
		return nil, nil
	}

	return f.resolutionByID(ctx, id)
}

func (f *fakeStorage) LastCompletedResolutionByQueryKey(ctx context.Context,
	queryKey string) (*domain.Resolution, error) {
	if f.lastCompletedResolutionByQueryKey == nil {
		return nil, nil
	}

	return f.lastCompletedResolutionByQueryKey(ctx, queryKey)
}

func (f *fakeStorage) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	if f.addJob == nil {
		return true, nil
	}

	return f.addJob(ctx, args, opts)
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) Begin(context.Context) (storage.TxStorage, error) {
	return nil, errors.New("not supported by fake")
}

func (f *fakeStorage) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	return cb(f)
}

// fakeRegistry implements registry.Client.
type fakeRegistry struct {
	search        func(ctx context.Context, query string) ([]domain.Company, error)
	fetchDocument func(ctx context.Context, linkID string) ([]byte, error)
}

func (f *fakeRegistry) Search(ctx context.Context, query string) ([]domain.Company, error) {
	if f.search == nil {
		return nil, nil
	}

	return f.search(ctx, query)
}

func (f *fakeRegistry) FetchDocument(ctx context.Context, linkID string) ([]byte, error) {
	if f.fetchDocument == nil {
		return nil, errors.New("no document")
	}

	return f.fetchDocument(ctx, linkID)
}

func TestEnqueueRequiresCompanyName(t *testing.T) {
	t.Parallel()

	svc := resolver.New(&fakeStorage{}, &fakeRegistry{}, nil, resolver.Options{})

	_, err := svc.Enqueue(context.Background(), "   ", "")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestEnqueueExtractsIdentifierFromName(t *testing.T) {
	t.Parallel()

	var stored domain.Resolution
	var jobArgs resolver.JobArgs
	strg := &fakeStorage{
		storeResolutions: func(_ context.Context, resolutions ...domain.Resolution) ([]domain.Resolution, error) {
			require.Len(t, resolutions, 1)
			stored = resolutions[0]

			return resolutions, nil
		},
		addJob: func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
			jobArgs = args.(resolver.JobArgs)

			return true, nil
		},
	}
	svc := resolver.New(strg, &fakeRegistry{}, nil, resolver.Options{})

	res, err := svc.Enqueue(context.Background(), "Acme Verwaltungs GmbH, HRB 259502", "")
	require.NoError(t, err)
	require.Equal(t, domain.ResolutionStatusPending, res.Status)
	require.Equal(t, "HRB259502", stored.RegistrationNumber)
	require.Equal(t, resolver.QueryKey("Acme Verwaltungs GmbH, HRB 259502", "HRB259502"), stored.QueryKey)
	require.Equal(t, stored.QueryKey, jobArgs.QueryKey)
	require.Equal(t, "HRB259502", jobArgs.RegistrationNumber)
}

func TestEnqueueServesCachedResolution(t *testing.T) {
	t.Parallel()

	cached := &domain.Resolution{
		CompanyName: "Acme GmbH",
		Status:      domain.ResolutionStatusCompleted,
		UpdatedAt:   time.Now(),
	}
	strg := &fakeStorage{
		lastCompletedResolutionByQueryKey: func(context.Context, string) (*domain.Resolution, error) {
			return cached, nil
		},
		storeResolutions: func(context.Context, ...domain.Resolution) ([]domain.Resolution, error) {
			t.Fatal("must not store a new resolution on cache hit")

			return nil, nil
		},
	}
	svc := resolver.New(strg, &fakeRegistry{}, nil, resolver.Options{ResultTTL: time.Hour})

	res, err := svc.Enqueue(context.Background(), "Acme GmbH", "")
	require.NoError(t, err)
	require.Same(t, cached, res)
}

func TestEnqueueIgnoresStaleCachedResolution(t *testing.T) {
	t.Parallel()

	var storedCalled bool
	strg := &fakeStorage{
		lastCompletedResolutionByQueryKey: func(context.Context, string) (*domain.Resolution, error) {
			return &domain.Resolution{
				Status:    domain.ResolutionStatusCompleted,
				UpdatedAt: time.Now().Add(-2 * time.Hour),
			}, nil
		},
		storeResolutions: func(_ context.Context, resolutions ...domain.Resolution) ([]domain.Resolution, error) {
			storedCalled = true

			return resolutions, nil
		},
	}
	svc := resolver.New(strg, &fakeRegistry{}, nil, resolver.Options{ResultTTL: time.Hour})

	res, err := svc.Enqueue(context.Background(), "Acme GmbH", "")
	require.NoError(t, err)
	require.True(t, storedCalled)
	require.Equal(t, domain.ResolutionStatusPending, res.Status)
}

func TestEnqueueJoinsAlreadyQueuedJob(t *testing.T) {
	t.Parallel()

	strg := &fakeStorage{
		addJob: func(context.Context, river.JobArgs, *river.InsertOpts) (bool, error) {
			return false, nil
		},
	}
	svc := resolver.New(strg, &fakeRegistry{}, nil, resolver.Options{})

	res, err := svc.Enqueue(context.Background(), "Acme GmbH", "")
	require.NoError(t, err)
	require.Equal(t, domain.ResolutionStatusPending, res.Status)
}

func TestLookupSearchesByIdentifierFirst(t *testing.T) {
	t.Parallel()

	var queries []string
	reg := &fakeRegistry{
		search: func(_ context.Context, query string) ([]domain.Company, error) {
			queries = append(queries, query)

			return []domain.Company{
				{Name: "Acme Verwaltungs GmbH", RegistrationNumber: "HRB 259502"},
			}, nil
		},
	}
	svc := resolver.New(&fakeStorage{}, reg, nil, resolver.Options{})

	result, err := svc.Lookup(context.Background(), "Acme GmbH", "HRB 259502")
	require.NoError(t, err)
	require.Equal(t, []string{"HRB 259502"}, queries)
	require.Equal(t, "Acme Verwaltungs GmbH", result.Company.Name)
	require.NotNil(t, result.Match)
	require.False(t, result.Match.NameOnly)
}

func TestLookupFallsBackToNameSearch(t *testing.T) {
	t.Parallel()

	var queries []string
	reg := &fakeRegistry{
		search: func(_ context.Context, query string) ([]domain.Company, error) {
			queries = append(queries, query)
			if len(queries) == 1 {
				return nil, nil
			}

			return []domain.Company{{Name: "Acme GmbH"}}, nil
		},
	}
	svc := resolver.New(&fakeStorage{}, reg, nil, resolver.Options{})

	result, err := svc.Lookup(context.Background(), "Acme GmbH", "HRB 259502")
	require.NoError(t, err)
	require.Equal(t, []string{"HRB 259502", "Acme GmbH"}, queries)
	require.Equal(t, "Acme GmbH", result.Company.Name)
}

func TestLookupNoCandidates(t *testing.T) {
	t.Parallel()

	svc := resolver.New(&fakeStorage{}, &fakeRegistry{}, nil, resolver.Options{})

	_, err := svc.Lookup(context.Background(), "Acme GmbH", "")
	require.ErrorIs(t, err, serrors.ErrNoCandidates)
}

func TestLookupToleratesDocumentFailures(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		search: func(context.Context, string) ([]domain.Company, error) {
			return []domain.Company{{
				Name: "Acme GmbH",
				DocumentLinks: map[domain.DocumentType]string{
					domain.DocumentTypeAD: "form:j_idt123",
				},
			}}, nil
		},
		fetchDocument: func(context.Context, string) ([]byte, error) {
			return nil, serrors.KindOnly(serrors.ErrUnavailable)
		},
	}
	svc := resolver.New(&fakeStorage{}, reg, nil, resolver.Options{})

	result, err := svc.Lookup(context.Background(), "Acme GmbH", "")
	require.NoError(t, err)
	require.Equal(t, "Acme GmbH", result.Company.Name)
	require.Empty(t, result.Documents)
}

func TestProcessStoresResult(t *testing.T) {
	t.Parallel()

	var gotKey string
	var gotUpdates storage.ResolutionUpdates
	strg := &fakeStorage{
		updatePendingResolutionsByQueryKey: func(_ context.Context,
			queryKey string, updates storage.ResolutionUpdates) error {
			gotKey = queryKey
			gotUpdates = updates

			return nil
		},
	}
	reg := &fakeRegistry{
		search: func(context.Context, string) ([]domain.Company, error) {
			return []domain.Company{{Name: "Acme GmbH", RegistrationNumber: "HRB 259502"}}, nil
		},
	}
	svc := resolver.New(strg, reg, nil, resolver.Options{MaxAttempts: 5})

	err := svc.Process(context.Background(), resolver.JobArgs{
		CompanyName:        "Acme GmbH",
		RegistrationNumber: "HRB 259502",
		QueryKey:           "acme|HRB259502",
	})
	require.NoError(t, err)
	require.Equal(t, "acme|HRB259502", gotKey)
	require.Equal(t, domain.ResolutionStatusCompleted, gotUpdates.Status)
	require.NotNil(t, gotUpdates.Result)
	require.Equal(t, "Acme GmbH", gotUpdates.Result.Company.Name)
	require.NotNil(t, gotUpdates.LastError)
	require.Empty(t, *gotUpdates.LastError)
}

func TestProcessLeavesRowsPendingOnTransientErrors(t *testing.T) {
	t.Parallel()

	for _, kind := range []serrors.Kind{serrors.ErrRateLimited, serrors.ErrUnavailable} {
		strg := &fakeStorage{
			updatePendingResolutionsByQueryKey: func(context.Context, string, storage.ResolutionUpdates) error {
				t.Fatal("must not touch rows on a transient error")

				return nil
			},
		}
		reg := &fakeRegistry{
			search: func(context.Context, string) ([]domain.Company, error) {
				return nil, serrors.KindOnly(kind)
			},
		}
		svc := resolver.New(strg, reg, nil, resolver.Options{})

		err := svc.Process(context.Background(), resolver.JobArgs{CompanyName: "Acme GmbH"})
		require.ErrorIs(t, err, kind)
	}
}

func TestProcessMarksRowsFailed(t *testing.T) {
	t.Parallel()

	var gotUpdates storage.ResolutionUpdates
	strg := &fakeStorage{
		updatePendingResolutionsByQueryKey: func(_ context.Context,
			_ string, updates storage.ResolutionUpdates) error {
			gotUpdates = updates

			return nil
		},
	}
	reg := &fakeRegistry{
		search: func(context.Context, string) ([]domain.Company, error) {
			return []domain.Company{{Name: "Completely Different AG"}}, nil
		},
	}
	svc := resolver.New(strg, reg, nil, resolver.Options{MaxAttempts: 3})

	err := svc.Process(context.Background(), resolver.JobArgs{CompanyName: "Acme GmbH"})
	require.ErrorIs(t, err, serrors.ErrNoMatchFound)
	require.Equal(t, domain.ResolutionStatusFailed, gotUpdates.Status)
	require.Equal(t, 3, gotUpdates.MaxAttempts)
	require.NotNil(t, gotUpdates.LastError)
	require.NotEmpty(t, *gotUpdates.LastError)
}

func TestResolutionNotFound(t *testing.T) {
	t.Parallel()

	svc := resolver.New(&fakeStorage{}, &fakeRegistry{}, nil, resolver.Options{})

	_, err := svc.Resolution(context.Background(), domain.ResolutionID{})
	require.ErrorIs(t, err, serrors.ErrNotFound)

	_, err = svc.Delete(context.Background(), domain.ResolutionID{})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestResolutionsClampsLimit(t *testing.T) {
	t.Parallel()

	var gotLimits []uint
	strg := &fakeStorage{
		resolutions: func(_ context.Context,
			_ domain.ResolutionStatus, _ time.Time, limit uint) (storage.ResolutionPage, error) {
			gotLimits = append(gotLimits, limit)

			return storage.ResolutionPage{}, nil
		},
	}
	svc := resolver.New(strg, &fakeRegistry{}, nil, resolver.Options{})

	_, err := svc.Resolutions(context.Background(), "", time.Time{}, 0)
	require.NoError(t, err)
	_, err = svc.Resolutions(context.Background(), "", time.Time{}, 1000)
	require.NoError(t, err)
	require.Equal(t, []uint{50, 100}, gotLimits)
}
