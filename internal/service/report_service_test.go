package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reportes-ciudadanos/internal/apperr"
	"reportes-ciudadanos/internal/auth"
	"reportes-ciudadanos/internal/models"
	"reportes-ciudadanos/internal/repository"
	"reportes-ciudadanos/internal/storage"
)

var (
	admin = auth.Identity{Email: "admin@ejemplo.com", Role: models.RoleAdmin}
	user  = auth.Identity{Email: "usuario@ejemplo.com", Role: models.RoleUser}
)

// MockPhotoStore is a mock implementation of PhotoStore.
type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) Save(original string, data []byte) (string, error) {
	args := m.Called(original, data)
	return args.String(0), args.Error(1)
}

func (m *MockPhotoStore) Remove(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// MockStatsCache is a mock implementation of StatsCache.
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(ctx context.Context) (*models.Statistics, int64, bool) {
	args := m.Called(ctx)
	gen := args.Get(1).(int64)
	if args.Get(0) == nil {
		return nil, gen, args.Bool(2)
	}
	return args.Get(0).(*models.Statistics), gen, args.Bool(2)
}

func (m *MockStatsCache) Set(ctx context.Context, gen int64, stats models.Statistics) {
	m.Called(ctx, gen, stats)
}

func (m *MockStatsCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type fixture struct {
	svc    *ReportService
	store  *repository.MemoryReportStore
	photos *storage.PhotoStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	photos, err := storage.NewPhotoStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	store := repository.NewMemoryReportStore()
	return fixture{
		svc:    NewReportService(store, photos, nil, 0),
		store:  store,
		photos: photos,
	}
}

func validInput() CreateReportInput {
	return CreateReportInput{
		Address: "Av. Libertad 123",
		Comment: "Bache profundo en la calzada",
		Photo:   &Photo{Filename: "bache.jpg", Data: []byte("jpegdata")},
	}
}

func assertKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "unexpected error type %T", err)
	assert.Equal(t, kind, e.Kind)
	if msg != "" {
		assert.Equal(t, msg, e.Message)
	}
}

func TestCreateValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *CreateReportInput)
		msg    string
	}{
		{
			name: "short address wins over everything",
			modify: func(in *CreateReportInput) {
				in.Address = "abc"
				in.Comment = "short"
				in.Photo = nil
			},
			msg: "address too short",
		},
		{
			name:   "address padded with spaces",
			modify: func(in *CreateReportInput) { in.Address = "  abc   " },
			msg:    "address too short",
		},
		{
			name: "short comment",
			modify: func(in *CreateReportInput) {
				in.Comment = "  corto   "
				in.Photo = nil
			},
			msg: "comment too short",
		},
		{
			name:   "missing photo",
			modify: func(in *CreateReportInput) { in.Photo = nil },
			msg:    "missing photo",
		},
		{
			name:   "empty filename",
			modify: func(in *CreateReportInput) { in.Photo.Filename = "" },
			msg:    "no file selected",
		},
		{
			name:   "disallowed type",
			modify: func(in *CreateReportInput) { in.Photo.Filename = "bache.gif" },
			msg:    "disallowed file type",
		},
		{
			name: "bad coordinates",
			modify: func(in *CreateReportInput) {
				in.Latitude = "120"
				in.Longitude = "-58.3"
			},
			msg: "invalid coordinates",
		},
		{
			name:   "only one coordinate",
			modify: func(in *CreateReportInput) { in.Latitude = "-34.6" },
			msg:    "invalid coordinates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			tt.modify(&in)

			_, err := f.svc.Create(context.Background(), user, in)
			assertKind(t, err, apperr.KindInvalidInput, tt.msg)

			reports, err := f.store.List(context.Background(), nil)
			require.NoError(t, err)
			assert.Empty(t, reports)

			entries, err := os.ReadDir(f.photos.Dir())
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestCreateAddressBoundary(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Address = "abcde"

	id, err := f.svc.Create(context.Background(), user, in)
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestCreateStoresPendingReport(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	in := validInput()
	in.Email = " vecino@correo.com "
	in.Latitude = "-34.6037"
	in.Longitude = "-58.3816"

	id, err := f.svc.Create(context.Background(), user, in)
	require.NoError(t, err)

	r, err := f.svc.Get(context.Background(), user, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, r.Status)
	assert.Nil(t, r.RejectionReason)
	assert.Equal(t, now, r.CreatedAt)
	require.NotNil(t, r.Email)
	assert.Equal(t, "vecino@correo.com", *r.Email)
	require.NotNil(t, r.AuthorEmail)
	assert.Equal(t, user.Email, *r.AuthorEmail)
	require.NotNil(t, r.Latitude)
	assert.InDelta(t, -34.6037, *r.Latitude, 1e-9)

	data, err := os.ReadFile(filepath.Join(f.photos.Dir(), r.Photo))
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
}

func TestCreateSameFilenameGetsDistinctPhotos(t *testing.T) {
	f := newFixture(t)

	id1, err := f.svc.Create(context.Background(), user, validInput())
	require.NoError(t, err)
	id2, err := f.svc.Create(context.Background(), user, validInput())
	require.NoError(t, err)

	r1, err := f.svc.Get(context.Background(), user, id1)
	require.NoError(t, err)
	r2, err := f.svc.Get(context.Background(), user, id2)
	require.NoError(t, err)
	assert.NotEqual(t, r1.Photo, r2.Photo)
}

func TestCreateRejectsOversizedPhoto(t *testing.T) {
	f := newFixture(t)
	f.svc.maxPhoto = 4

	_, err := f.svc.Create(context.Background(), user, validInput())
	assertKind(t, err, apperr.KindTooLarge, "")
}

func TestCreatePhotoWriteFailureCreatesNoRow(t *testing.T) {
	store := repository.NewMemoryReportStore()
	photos := new(MockPhotoStore)
	photos.On("Save", "bache.jpg", []byte("jpegdata")).Return("", errors.New("disk full"))

	svc := NewReportService(store, photos, nil, 0)
	_, err := svc.Create(context.Background(), user, validInput())
	assertKind(t, err, apperr.KindInternal, "error saving photo")
	assert.Contains(t, err.Error(), "disk full")

	reports, err := store.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, reports)
	photos.AssertExpectations(t)
}

func TestCreateRowFailureRemovesPhoto(t *testing.T) {
	store := repository.NewMemoryReportStore()
	store.CreateErr = errors.New("connection reset")
	photos := new(MockPhotoStore)
	photos.On("Save", "bache.jpg", []byte("jpegdata")).Return("20240517_103000_ab12cd34_bache.jpg", nil)
	photos.On("Remove", "20240517_103000_ab12cd34_bache.jpg").Return(nil)

	svc := NewReportService(store, photos, nil, 0)
	_, err := svc.Create(context.Background(), user, validInput())
	assertKind(t, err, apperr.KindInternal, "error creating report")
	photos.AssertExpectations(t)
}

func TestAnonymousCallerIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, auth.Identity{}, validInput())
	assertKind(t, err, apperr.KindUnauthorized, "")
	_, err = f.svc.List(ctx, auth.Identity{}, "")
	assertKind(t, err, apperr.KindUnauthorized, "")
	_, err = f.svc.Get(ctx, auth.Identity{}, 1)
	assertKind(t, err, apperr.KindUnauthorized, "")
}

func TestListOrderAndFilter(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	old := f.store.Put(models.Report{Status: models.StatusPending, CreatedAt: base})
	mid := f.store.Put(models.Report{Status: models.StatusSolved, CreatedAt: base.Add(time.Hour)})
	recent := f.store.Put(models.Report{Status: models.StatusPending, CreatedAt: base.Add(2 * time.Hour)})

	ids := func(rs []models.Report) []uint {
		out := make([]uint, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	all, err := f.svc.List(context.Background(), user, models.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, []uint{recent, mid, old}, ids(all))

	none, err := f.svc.List(context.Background(), user, "")
	require.NoError(t, err)
	assert.Equal(t, ids(all), ids(none))

	pending, err := f.svc.List(context.Background(), user, "Pendiente")
	require.NoError(t, err)
	assert.Equal(t, []uint{recent, old}, ids(pending))

	unknown, err := f.svc.List(context.Background(), user, "Archivado")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), user, 42)
	assertKind(t, err, apperr.KindNotFound, "report not found")
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.store.Put(models.Report{Status: models.StatusPending, CreatedAt: time.Now()})

	err := f.svc.UpdateStatus(ctx, admin, id, "Cerrado", "")
	assertKind(t, err, apperr.KindInvalidInput, "invalid status")

	err = f.svc.UpdateStatus(ctx, admin, id, models.StatusRejected, "   corto    ")
	assertKind(t, err, apperr.KindInvalidInput, "rejection reason required")

	require.NoError(t, f.svc.UpdateStatus(ctx, admin, id, models.StatusRejected, "  Duplicado del reporte 3  "))
	r, err := f.svc.Get(ctx, admin, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, r.Status)
	require.NotNil(t, r.RejectionReason)
	assert.Equal(t, "Duplicado del reporte 3", *r.RejectionReason)

	require.NoError(t, f.svc.UpdateStatus(ctx, admin, id, models.StatusSolved, "se ignora este texto"))
	r, err = f.svc.Get(ctx, admin, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSolved, r.Status)
	assert.Nil(t, r.RejectionReason)
}

func TestUpdateStatusAccessAndMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.store.Put(models.Report{Status: models.StatusPending, CreatedAt: time.Now()})

	err := f.svc.UpdateStatus(ctx, user, id, models.StatusSolved, "")
	assertKind(t, err, apperr.KindForbidden, ForbiddenMessage)

	err = f.svc.UpdateStatus(ctx, admin, 999, models.StatusSolved, "")
	assertKind(t, err, apperr.KindNotFound, "report not found")
}

func TestRejectionInvariantHolds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.store.Put(models.Report{Status: models.StatusPending, CreatedAt: time.Now()})

	steps := []struct {
		status models.ReportStatus
		reason string
	}{
		{models.StatusRejected, "Fuera de la jurisdicción"},
		{models.StatusVerifying, "texto residual"},
		{models.StatusRejected, "corto"},
		{models.StatusRejected, "Información insuficiente"},
		{models.StatusPending, ""},
	}
	for _, step := range steps {
		_ = f.svc.UpdateStatus(ctx, admin, id, step.status, step.reason)

		r, err := f.svc.Get(ctx, admin, id)
		require.NoError(t, err)
		hasReason := r.RejectionReason != nil && trimmedLen(*r.RejectionReason) >= MinReasonLen
		assert.Equal(t, r.Status == models.StatusRejected, hasReason, "after %s", step.status)
	}
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now()
	f.store.Put(models.Report{Status: models.StatusPending, CreatedAt: now})
	f.store.Put(models.Report{Status: models.StatusPending, CreatedAt: now})
	f.store.Put(models.Report{Status: models.StatusRejected, CreatedAt: now})
	f.store.Put(models.Report{Status: "Archivado", CreatedAt: now})

	_, err := f.svc.Statistics(ctx, user)
	assertKind(t, err, apperr.KindForbidden, ForbiddenMessage)

	stats, err := f.svc.Statistics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.Statistics{
		Pending:   2,
		Verifying: 0,
		Solved:    0,
		Rejected:  1,
		Total:     4,
	}, stats)
	assert.Equal(t, stats.Total, stats.Pending+stats.Verifying+stats.Solved+stats.Rejected+1)
}

func TestStatisticsUsesCache(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryReportStore()
	store.Put(models.Report{Status: models.StatusSolved, CreatedAt: time.Now()})

	cache := new(MockStatsCache)
	cache.On("Get", ctx).Return(nil, int64(4), false).Once()
	cache.On("Set", ctx, int64(4), models.Statistics{Solved: 1, Total: 1}).Once()

	svc := NewReportService(store, new(MockPhotoStore), cache, 0)
	stats, err := svc.Statistics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	cached := &models.Statistics{Pending: 7, Total: 7}
	cache.On("Get", ctx).Return(cached, int64(4), true).Once()
	stats, err = svc.Statistics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, *cached, stats)

	cache.On("Invalidate", ctx).Once()
	require.NoError(t, svc.UpdateStatus(ctx, admin, 1, models.StatusVerifying, ""))
	cache.AssertExpectations(t)
}

// generationCache mirrors the Redis cache: values are stored per generation
// and Invalidate moves to a new one.
type generationCache struct {
	mu      sync.Mutex
	gen     int64
	entries map[int64]models.Statistics
}

func newGenerationCache() *generationCache {
	return &generationCache{entries: map[int64]models.Statistics{}}
}

func (c *generationCache) Get(context.Context) (*models.Statistics, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[c.gen]
	if !ok {
		return nil, c.gen, false
	}
	return &stats, c.gen, true
}

func (c *generationCache) Set(_ context.Context, gen int64, stats models.Statistics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[gen] = stats
}

func (c *generationCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
}

// countHookStore runs afterCount once, between counting and returning.
type countHookStore struct {
	*repository.MemoryReportStore
	afterCount func()
}

func (s *countHookStore) CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error) {
	counts, err := s.MemoryReportStore.CountByStatus(ctx)
	if hook := s.afterCount; hook != nil {
		s.afterCount = nil
		hook()
	}
	return counts, err
}

func TestStatisticsIgnoresCountsSupersededByWrite(t *testing.T) {
	ctx := context.Background()
	store := &countHookStore{MemoryReportStore: repository.NewMemoryReportStore()}
	id := store.Put(models.Report{Status: models.StatusPending, CreatedAt: time.Now()})

	svc := NewReportService(store, new(MockPhotoStore), newGenerationCache(), 0)
	store.afterCount = func() {
		require.NoError(t, svc.UpdateStatus(ctx, admin, id, models.StatusSolved, ""))
	}

	stale, err := svc.Statistics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stale.Pending)

	stats, err := svc.Statistics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.Statistics{Solved: 1, Total: 1}, stats)
}
