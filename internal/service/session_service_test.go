package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dcu-portal-api/internal/directory"
	"github.com/noah-isme/dcu-portal-api/internal/models"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
)

func newTestSessionService(t *testing.T, cfg SessionServiceConfig) (*SessionService, *MetricsService) {
	t.Helper()
	metrics := NewMetricsService()
	clubs := NewClubService(&fakeClubSource{clubs: testClubs()}, nil, metrics, nil, nil, ClubServiceConfig{})
	require.NoError(t, clubs.Load(context.Background()))
	svc := NewSessionService(clubs, metrics, nil, cfg)
	t.Cleanup(svc.Stop)
	return svc, metrics
}

func TestSessionServiceLifecycle(t *testing.T) {
	svc, metrics := newTestSessionService(t, SessionServiceConfig{PageSize: 2})
	ctx := context.Background()

	session, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, int64(1), metrics.Snapshot().ActiveSessions)

	view, err := svc.Apply(ctx, session.ID(), directory.Intent{Kind: directory.IntentCategory, Category: models.FilterFor(models.CategorySports)})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Pagination.TotalCount)
	assert.Equal(t, 1, view.Query.Page)

	got, err := svc.Get(ctx, session.ID())
	require.NoError(t, err)
	assert.Equal(t, view.Revision, got.View().Revision)

	require.NoError(t, svc.Close(ctx, session.ID()))
	assert.Equal(t, 0, svc.Count())
	assert.Equal(t, int64(0), metrics.Snapshot().ActiveSessions)

	_, err = svc.Get(ctx, session.ID())
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))
	assert.True(t, errors.Is(svc.Close(ctx, session.ID()), appErrors.ErrSessionNotFound))
}

func TestSessionServiceRejectsUnknownIntent(t *testing.T) {
	svc, _ := newTestSessionService(t, SessionServiceConfig{})
	ctx := context.Background()

	session, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, session.ID(), directory.Intent{Kind: "scroll"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Apply(ctx, "missing", directory.Intent{Kind: directory.IntentSort})
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))
}

func TestSessionServiceDebouncedSearchReachesSubscribers(t *testing.T) {
	svc, _ := newTestSessionService(t, SessionServiceConfig{SearchDebounce: 20 * time.Millisecond})
	ctx := context.Background()

	session, err := svc.Create(ctx)
	require.NoError(t, err)
	views, cancel := session.Subscribe()
	defer cancel()

	for _, text := range []string{"환", "환경"} {
		view, err := svc.Apply(ctx, session.ID(), directory.Intent{Kind: directory.IntentSearch, Text: text})
		require.NoError(t, err)
		assert.True(t, view.PendingSearch)
	}

	select {
	case view := <-views:
		assert.Equal(t, "환경", view.Query.Search)
		require.Len(t, view.Clubs, 1)
		assert.Equal(t, int64(11), view.Clubs[0].ID)
	case <-time.After(time.Second):
		t.Fatal("debounced search never published")
	}
}

func TestSessionServiceSweepsIdleSessions(t *testing.T) {
	svc, _ := newTestSessionService(t, SessionServiceConfig{IdleTTL: time.Minute})
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	idle, err := svc.Create(ctx)
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	active, err := svc.Create(ctx)
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	assert.Equal(t, 1, svc.Sweep())

	_, err = svc.Get(ctx, idle.ID())
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))
	_, err = svc.Get(ctx, active.ID())
	assert.NoError(t, err)
}

func TestSessionServiceUnavailableDirectory(t *testing.T) {
	clubs := NewClubService(&fakeClubSource{err: errors.New("boom")}, nil, nil, nil, nil, ClubServiceConfig{})
	_ = clubs.Load(context.Background())
	svc := NewSessionService(clubs, nil, nil, SessionServiceConfig{})

	_, err := svc.Create(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrDirectoryUnavailable))
}

func TestSessionServiceStopClosesSessions(t *testing.T) {
	svc, _ := newTestSessionService(t, SessionServiceConfig{SweepPeriod: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	session, err := svc.Create(ctx)
	require.NoError(t, err)
	views, _ := session.Subscribe()

	svc.Stop()
	assert.Equal(t, 0, svc.Count())
	_, open := <-views
	assert.False(t, open)
}
