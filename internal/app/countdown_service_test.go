package app_test

import (
	"context"
	"testing"
	"time"

	"dugod-content-service/internal/app"
	"dugod-content-service/internal/domain"
	"dugod-content-service/internal/infra/memory"
	"dugod-content-service/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountdownService(t *testing.T, repo *memory.CountdownRepository) *app.CountdownService {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	return app.NewCountdownServiceWithClock(
		repo, memory.NewCache(time.Minute), app.NewTickerWithClock(time.Millisecond, clock),
		logger.Discard(), clock,
	)
}

func countdownInput(title, launch string, active bool) app.CountdownInput {
	return app.CountdownInput{
		Title:       title,
		LaunchDate:  launch,
		IsActive:    active,
		ShowDays:    true,
		ShowHours:   true,
		ShowMinutes: true,
		ShowSeconds: true,
	}
}

func TestCreateActiveCountdownReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCountdownRepository()
	svc := newCountdownService(t, repo)

	first, err := svc.Create(ctx, countdownInput("Beta", "2026-12-01T00:00:00Z", true))
	require.NoError(t, err)
	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	second, err := svc.Create(ctx, countdownInput("Launch", "2027-01-01T00:00:00Z", true))
	require.NoError(t, err)

	active, err = svc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, domain.CountdownActive, active.Status)

	old, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)
	assert.Equal(t, domain.CountdownInactive, old.Status)
}

func TestUpdateRefreshesCachedActiveCountdown(t *testing.T) {
	ctx := context.Background()
	svc := newCountdownService(t, memory.NewCountdownRepository())

	c, err := svc.Create(ctx, countdownInput("Beta", "2026-12-01T00:00:00Z", true))
	require.NoError(t, err)
	_, err = svc.Active(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, countdownInput("Beta launch", "2026-12-01T00:00:00Z", true))
	require.NoError(t, err)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Beta launch", active.Title)

	require.NoError(t, svc.Delete(ctx, c.ID))
	active, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestCountdownInputValidation(t *testing.T) {
	ctx := context.Background()
	svc := newCountdownService(t, memory.NewCountdownRepository())

	_, err := svc.Create(ctx, countdownInput("Beta", "next tuesday", true))
	assert.ErrorIs(t, err, domain.ErrInvalidLaunchDate)

	_, err = svc.Create(ctx, countdownInput("  ", "2026-12-01", true))
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)

	_, err = svc.Update(ctx, "missing", countdownInput("Beta", "2026-12-01", true))
	assert.ErrorIs(t, err, domain.ErrCountdownNotFound)
}

func TestPastLaunchDateIsExpired(t *testing.T) {
	ctx := context.Background()
	svc := newCountdownService(t, memory.NewCountdownRepository())

	c, err := svc.Create(ctx, countdownInput("Done", "2026-09-01T00:00:00Z", true))
	require.NoError(t, err)
	assert.Equal(t, domain.CountdownExpired, c.Status)

	_, remaining, err := svc.Remaining(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExpiredRemaining, remaining)
}

func TestRemainingUsesServiceClock(t *testing.T) {
	ctx := context.Background()
	svc := newCountdownService(t, memory.NewCountdownRepository())

	launch := fixedNow.Add(90061 * time.Second).Format(time.RFC3339)
	c, err := svc.Create(ctx, countdownInput("Soon", launch, false))
	require.NoError(t, err)

	_, remaining, err := svc.Remaining(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimeRemaining{Days: 1, Hours: 1, Minutes: 1, Seconds: 1, Total: 90061000}, remaining)
}

func TestWatchWithoutActiveCountdown(t *testing.T) {
	svc := newCountdownService(t, memory.NewCountdownRepository())

	_, _, err := svc.Watch(context.Background())
	assert.ErrorIs(t, err, domain.ErrCountdownNotFound)
}

func TestWatchStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := newCountdownService(t, memory.NewCountdownRepository())
	_, err := svc.Create(ctx, countdownInput("Far", "2030-01-01T00:00:00Z", true))
	require.NoError(t, err)

	_, ticks, err := svc.Watch(ctx)
	require.NoError(t, err)
	first := <-ticks
	assert.False(t, first.IsExpired)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ticks:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}
