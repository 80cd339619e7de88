package calculator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/creator-calc/internal/enterprise"
	"github.com/AngelCh415/creator-calc/internal/estimator"
	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/models"
	"github.com/AngelCh415/creator-calc/internal/rates"
	"github.com/AngelCh415/creator-calc/internal/store"
	"github.com/AngelCh415/creator-calc/internal/tracking"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func input(p models.Platform, followers int64) models.CalculatorInput {
	in := models.CalculatorInput{
		Platform: p,
		Metrics:  models.Metrics{AvgViews: f64(float64(followers) / 2), AvgLikes: f64(float64(followers) / 40)},
		Profile:  models.Profile{ContentNiche: models.NicheGaming, AudienceLocation: models.LocationUS},
	}
	if p == models.PlatformYouTube {
		in.Metrics.Subscribers = i64(followers)
	} else {
		in.Metrics.Followers = i64(followers)
	}
	return in
}

type events struct {
	mu  sync.Mutex
	got []tracking.Event
}

func (e *events) Track(ev tracking.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
}

func (e *events) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.got {
		out = append(out, ev.Name)
	}
	return out
}

type brokenHistory struct{ *store.MemoryStore }

func (brokenHistory) CreateHistory(context.Context, models.HistoryEntry) (models.HistoryEntry, error) {
	return models.HistoryEntry{}, errors.New("db down")
}

type fixture struct {
	svc   *Service
	db    *store.MemoryStore
	rec   *metrics.MemoryRecorder
	track *events
}

func newFixture(t *testing.T, mod func(*Dependencies)) fixture {
	t.Helper()
	f := fixture{
		db:    store.NewMemoryStore(3),
		rec:   metrics.NewMemoryRecorder(metrics.DefaultPolicy()),
		track: &events{},
	}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := Dependencies{
		Estimator:  estimator.New(rates.Default()),
		History:    f.db,
		Saved:      f.db,
		Tracker:    f.track,
		Metrics:    f.rec,
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		SavedLimit: 3,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
	if mod != nil {
		mod(&d)
	}
	f.svc = NewService(d)
	return f
}

func (f fixture) counter(t *testing.T, name string) float64 {
	t.Helper()
	snap, err := f.rec.Snapshot(context.Background())
	require.NoError(t, err)
	return snap.Counters[name]
}

func TestCalculateAnonymousSkipsHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	calc, err := f.svc.Calculate(ctx, "", input(models.PlatformTikTok, 100000))
	require.NoError(t, err)
	assert.Greater(t, calc.Result.MonthlyEarnings, 0.0)
	assert.False(t, calc.Timestamp.IsZero())

	_, total, err := f.db.ListHistory(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 1.0, f.counter(t, "calculator.calculations"))
	assert.Equal(t, []string{tracking.EventCalculationCompleted}, f.track.names())
}

func TestCalculateWritesHistoryForUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	calc, err := f.svc.Calculate(ctx, "u1", input(models.PlatformInstagram, 20000))
	require.NoError(t, err)

	page, err := f.svc.ListHistory(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, calc.Result, page.Items[0].Result)
	assert.Equal(t, models.PlatformInstagram, page.Items[0].Platform)
	assert.Equal(t, calc.Timestamp, page.Items[0].CreatedAt)
}

func TestHistoryFailureDoesNotFailCalculation(t *testing.T) {
	db := store.NewMemoryStore(3)
	f := newFixture(t, func(d *Dependencies) { d.History = brokenHistory{db} })

	_, err := f.svc.Calculate(context.Background(), "u1", input(models.PlatformTikTok, 1000))
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.counter(t, "calculator.history_errors"))
}

func TestCalculateRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)
	in := input(models.PlatformTikTok, 1000)
	in.Metrics.AvgViews = f64(-5)

	_, err := f.svc.Calculate(context.Background(), "u1", in)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "metrics.avgViews", verr.Details[0].Field)
	assert.True(t, IsClientError(err))
	assert.Empty(t, f.track.names())
	assert.Zero(t, f.counter(t, "calculator.calculations"))
}

func TestCalculateEnterpriseReportsUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	opts := enterprise.Options{IncludeRiskAssessment: true, EnableMonitoring: true}

	calc, err := f.svc.CalculateEnterprise(context.Background(), "", input(models.PlatformYouTube, 50000), opts)
	require.NoError(t, err)
	assert.Greater(t, calc.Result.MonthlyEarnings, 0.0)
	assert.Equal(t, []string{"includeRiskAssessment", "enableMonitoring"}, calc.Enterprise.Unavailable)
	assert.Empty(t, calc.Enterprise.Enhancements)
	assert.Equal(t, []string{tracking.EventEnterpriseCompleted}, f.track.names())
}

func TestSaveAndLimit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := f.svc.Save(ctx, "u1", "  plan  ", input(models.PlatformTikTok, int64(1000*(i+1))))
		require.NoError(t, err)
		assert.Equal(t, "plan", s.Name)
		assert.NotEmpty(t, s.ID)
	}
	_, err := f.svc.Save(ctx, "u1", "one too many", input(models.PlatformTikTok, 1000))
	assert.ErrorIs(t, err, models.ErrLimitExceeded)
	assert.False(t, IsClientError(err))

	// other users have their own cap
	_, err = f.svc.Save(ctx, "u2", "mine", input(models.PlatformTikTok, 1000))
	assert.NoError(t, err)

	assert.Equal(t, 4.0, f.counter(t, "calculator.saved"))
	assert.Equal(t, 3, f.svc.SavedLimit())
}

func TestSaveValidatesName(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, name := range []string{"", "   ", strings.Repeat("é", 101)} {
		_, err := f.svc.Save(ctx, "u1", name, input(models.PlatformTikTok, 1000))
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr, "name %q", name)
		assert.Equal(t, "name", verr.Details[0].Field)
	}

	_, err := f.svc.Save(ctx, "u1", strings.Repeat("é", 100), input(models.PlatformTikTok, 1000))
	assert.NoError(t, err)
}

func TestSavedLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	s, err := f.svc.Save(ctx, "u1", "first", input(models.PlatformTikTok, 1000))
	require.NoError(t, err)

	got, err := f.svc.GetSaved(ctx, "u1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	_, err = f.svc.GetSaved(ctx, "u2", s.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	renamed, err := f.svc.RenameSaved(ctx, "u1", s.ID, " second ")
	require.NoError(t, err)
	assert.Equal(t, "second", renamed.Name)

	_, err = f.svc.RenameSaved(ctx, "u1", s.ID, "")
	assert.True(t, IsClientError(err))

	require.NoError(t, f.svc.DeleteSaved(ctx, "u1", s.ID))
	assert.ErrorIs(t, f.svc.DeleteSaved(ctx, "u1", s.ID), models.ErrNotFound)
}

func TestPaginationClamp(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Calculate(ctx, "u1", input(models.PlatformTikTok, 1000))
		require.NoError(t, err)
	}

	page, err := f.svc.ListHistory(ctx, "u1", 0, -4)
	require.NoError(t, err)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 0, page.Offset)
	assert.Len(t, page.Items, 3)

	page, err = f.svc.ListHistory(ctx, "u1", 500, 2)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Total)

	saved, err := f.svc.ListSaved(ctx, "u1", 5, 0)
	require.NoError(t, err)
	assert.Empty(t, saved.Items)
	assert.NotNil(t, saved.Items)

	n, err := f.svc.ClearHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNewServiceDefaults(t *testing.T) {
	s := NewService(Dependencies{
		Estimator: estimator.New(rates.Default()),
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	assert.Equal(t, store.DefaultSavedLimit, s.SavedLimit())

	calc, err := s.Calculate(context.Background(), "", input(models.PlatformTikTok, 1000))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, calc.Timestamp.Location())
}
