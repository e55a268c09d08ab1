//go:build unit

package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
)

type fakeDedupReads struct {
	found     bool
	err       error
	calls     int
	lastSince time.Time
}

func (f *fakeDedupReads) HasRecentAttempt(_ context.Context, _ string, _ notification.Type, _ string, since time.Time) (bool, error) {
	f.calls++
	f.lastSince = since
	return f.found, f.err
}

// windowedDedupReads reports a match only while the stored attempt time
// is at or after the requested cutoff, like the real store's query.
type windowedDedupReads struct {
	attemptAt time.Time
}

func (f *windowedDedupReads) HasRecentAttempt(_ context.Context, _ string, _ notification.Type, _ string, since time.Time) (bool, error) {
	return !f.attemptAt.Before(since), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDuplicateSuppressor(t *testing.T) {
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	window := 5 * time.Minute

	t.Run("suppresses recent duplicate", func(t *testing.T) {
		reads := &fakeDedupReads{found: true}
		s := commands.NewDuplicateSuppressor(reads, window, clock.NewMockClock(now), discardLogger())

		suppressed := s.ShouldSuppress(context.Background(), "a@b.org", notification.TypeConfirmation, "res-1")
		assert.True(t, suppressed)
		assert.Equal(t, 1, reads.calls)
		assert.Equal(t, now.Add(-window), reads.lastSince)
	})

	t.Run("passes when no recent attempt", func(t *testing.T) {
		reads := &fakeDedupReads{found: false}
		s := commands.NewDuplicateSuppressor(reads, window, clock.NewMockClock(now), discardLogger())

		assert.False(t, s.ShouldSuppress(context.Background(), "a@b.org", notification.TypeConfirmation, "res-1"))
	})

	t.Run("stops suppressing once the window elapses", func(t *testing.T) {
		clk := clock.NewMockClock(now)
		reads := &windowedDedupReads{attemptAt: now.Add(-time.Minute)}
		s := commands.NewDuplicateSuppressor(reads, window, clk, discardLogger())

		assert.True(t, s.ShouldSuppress(context.Background(), "a@b.org", notification.TypeConfirmation, "res-1"))

		clk.Advance(window)
		assert.False(t, s.ShouldSuppress(context.Background(), "a@b.org", notification.TypeConfirmation, "res-1"))
	})

	t.Run("malformed correlation key disables dedup without a lookup", func(t *testing.T) {
		reads := &fakeDedupReads{found: true}
		s := commands.NewDuplicateSuppressor(reads, window, clock.NewMockClock(now), discardLogger())

		assert.False(t, s.ShouldSuppress(context.Background(), "a@b.org", notification.TypeConfirmation, "bad key with spaces"))
		assert.Equal(t, 0, reads.calls)
	})

	t.Run("lookup failure fails open", func(t *testing.T) {
		reads := &fakeDedupReads{found: true, err: errors.New("db down")}
		s := commands.NewDuplicateSuppressor(reads, window, clock.NewMockClock(now), discardLogger())

		assert.False(t, s.ShouldSuppress(context.Background(), "a@b.org", notification.TypeConfirmation, "res-1"))
		assert.Equal(t, 1, reads.calls)
	})
}
