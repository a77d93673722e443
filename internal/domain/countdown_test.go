package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"dugod-content-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRemainingExpiredWhenTargetReached(t *testing.T) {
	for _, offset := range []time.Duration{0, -time.Millisecond, -time.Hour, -400 * 24 * time.Hour} {
		got := domain.Remaining(base.Add(offset), base)
		assert.Equal(t, domain.TimeRemaining{IsExpired: true}, got, "offset %s", offset)
	}
}

func TestRemainingDecomposition(t *testing.T) {
	got := domain.Remaining(base.Add(90061000*time.Millisecond), base)
	assert.Equal(t, domain.TimeRemaining{
		Days:    1,
		Hours:   1,
		Minutes: 1,
		Seconds: 1,
		Total:   90061000,
	}, got)
}

func TestRemainingLosesLessThanASecond(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	diffs := []int64{1, 999, 1000, 59999, 60000, 3599999, 86399999, 86400000}
	for i := 0; i < 500; i++ {
		diffs = append(diffs, 1+rnd.Int63n(1000*86400000))
	}
	for _, diff := range diffs {
		r := domain.Remaining(base.Add(time.Duration(diff)*time.Millisecond), base)
		require.False(t, r.IsExpired)
		require.Equal(t, diff, r.Total)
		sum := r.Days*86400000 + r.Hours*3600000 + r.Minutes*60000 + r.Seconds*1000
		require.LessOrEqual(t, sum, diff)
		require.Less(t, diff, sum+1000)
		require.Less(t, r.Hours, int64(24))
		require.Less(t, r.Minutes, int64(60))
		require.Less(t, r.Seconds, int64(60))
	}
}

func TestRemainingForFailsSafe(t *testing.T) {
	assert.True(t, domain.RemainingFor("not a date", base).IsExpired)
	assert.True(t, domain.RemainingFor("", base).IsExpired)
	assert.True(t, domain.Remaining(time.Time{}, base).IsExpired)

	got := domain.RemainingFor("2026-03-02T13:01:01Z", base)
	assert.Equal(t, int64(1), got.Days)
	assert.Equal(t, int64(1), got.Hours)
	assert.False(t, got.IsExpired)
}

func TestParseLaunchDateLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2026-03-02T12:00:00Z":      base.Add(24 * time.Hour),
		"2026-03-02T14:00:00+02:00": base.Add(24 * time.Hour),
		"2026-03-02T12:00:00":       base.Add(24 * time.Hour),
		"2026-03-02 12:00:00":       base.Add(24 * time.Hour),
		"2026-03-02":                time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got, err := domain.ParseLaunchDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s: want %s got %s", raw, want, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err := domain.ParseLaunchDate("03/02/2026")
	assert.ErrorIs(t, err, domain.ErrInvalidLaunchDate)
}

func TestStatusAt(t *testing.T) {
	c := domain.Countdown{LaunchDate: base.Add(time.Hour), IsActive: true}
	assert.Equal(t, domain.CountdownActive, c.StatusAt(base))
	assert.Equal(t, domain.CountdownExpired, c.StatusAt(base.Add(time.Hour)))

	c.IsActive = false
	assert.Equal(t, domain.CountdownInactive, c.StatusAt(base))
	assert.Equal(t, domain.CountdownExpired, c.StatusAt(base.Add(2*time.Hour)))
}

func TestVisibleUnitsDoNotChangeValues(t *testing.T) {
	r := domain.Remaining(base.Add(90061000*time.Millisecond), base)

	all := r.Visible(domain.AllUnits)
	require.Len(t, all, 4)
	assert.Equal(t, "days", all[0].Unit)
	assert.Equal(t, "seconds", all[3].Unit)

	partial := r.Visible(domain.DisplayUnits{Hours: true, Seconds: true})
	assert.Equal(t, []domain.UnitValue{{Unit: "hours", Value: 1}, {Unit: "seconds", Value: 1}}, partial)
	assert.Empty(t, r.Visible(domain.DisplayUnits{}))
}
