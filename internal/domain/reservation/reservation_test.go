//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"volunteer-slots/internal/domain/reservation"
	"volunteer-slots/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// 2026-09-02 is a Wednesday
	wednesday = time.Date(2026, 9, 2, 10, 30, 0, 0, time.UTC)
	friday    = time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	saturday  = time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	monday    = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	serviceStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

func TestServiceDate(t *testing.T) {
	t.Run("truncates time of day", func(t *testing.T) {
		sd, err := reservation.NewServiceDate(wednesday)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-02", sd.String())
		assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), sd.Time())
	})

	t.Run("rejects zero time", func(t *testing.T) {
		_, err := reservation.NewServiceDate(time.Time{})
		assert.ErrorIs(t, err, reservation.ErrZeroServiceDate)
	})

	t.Run("same day different hours compare equal", func(t *testing.T) {
		morning := reservation.MustServiceDate(time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC))
		evening := reservation.MustServiceDate(time.Date(2026, 9, 2, 22, 0, 0, 0, time.UTC))
		assert.True(t, morning.Equal(evening))
	})

	t.Run("weekdays are service days", func(t *testing.T) {
		assert.True(t, reservation.MustServiceDate(wednesday).IsServiceDay())
		assert.True(t, reservation.MustServiceDate(friday).IsServiceDay())
		assert.False(t, reservation.MustServiceDate(saturday).IsServiceDay())
	})

	t.Run("next service day skips weekends", func(t *testing.T) {
		next := reservation.MustServiceDate(friday).NextServiceDay()
		assert.Equal(t, reservation.MustServiceDate(monday), next)
	})

	t.Run("validate bookable", func(t *testing.T) {
		cases := []struct {
			name  string
			date  time.Time
			now   time.Time
			start time.Time
			errIs error
		}{
			{
				name:  "future weekday is bookable",
				date:  friday,
				now:   wednesday,
				start: serviceStart,
			},
			{
				name:  "same day is bookable",
				date:  wednesday,
				now:   wednesday,
				start: serviceStart,
			},
			{
				name:  "past date rejected",
				date:  wednesday,
				now:   friday,
				start: serviceStart,
				errIs: reservation.ErrDateInPast,
			},
			{
				name:  "weekend rejected",
				date:  saturday,
				now:   wednesday,
				start: serviceStart,
				errIs: reservation.ErrNotServiceDay,
			},
			{
				name:  "before program start rejected",
				date:  friday,
				now:   wednesday,
				start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				errIs: reservation.ErrBeforeService,
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := reservation.MustServiceDate(tc.date).ValidateBookable(tc.now, tc.start)
				if tc.errIs != nil {
					assert.ErrorIs(t, err, tc.errIs)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})
}

func TestReservation(t *testing.T) {
	services := &reservation.Services{Clock: clock.NewMockClock(wednesday)}
	pol := reservation.PolicySpec{MaxPerDay: 6, ServiceStart: serviceStart}

	t.Run("new reservation starts pending", func(t *testing.T) {
		res, err := reservation.NewReservation(services, pol, uuid.New(), reservation.MustServiceDate(friday))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, res.ID())
		assert.Equal(t, reservation.StatusPending, res.Status())
		assert.True(t, res.IsActive())
		assert.Nil(t, res.ConfirmedAt())
		assert.Equal(t, wednesday, res.CreatedAt())
	})

	t.Run("rejects unbookable date", func(t *testing.T) {
		_, err := reservation.NewReservation(services, pol, uuid.New(), reservation.MustServiceDate(saturday))
		assert.ErrorIs(t, err, reservation.ErrNotServiceDay)
	})

	t.Run("confirm stamps confirmedAt", func(t *testing.T) {
		res, err := reservation.NewReservation(services, pol, uuid.New(), reservation.MustServiceDate(friday))
		require.NoError(t, err)

		now := wednesday.Add(time.Hour)
		require.NoError(t, res.Confirm(now))
		assert.Equal(t, reservation.StatusConfirmed, res.Status())
		require.NotNil(t, res.ConfirmedAt())
		assert.Equal(t, now, *res.ConfirmedAt())
	})

	t.Run("confirm requires pending", func(t *testing.T) {
		res, err := reservation.NewReservation(services, pol, uuid.New(), reservation.MustServiceDate(friday))
		require.NoError(t, err)
		require.NoError(t, res.Confirm(wednesday))

		assert.ErrorIs(t, res.Confirm(wednesday), reservation.ErrNotPending)
	})

	t.Run("cancel releases once", func(t *testing.T) {
		res, err := reservation.NewReservation(services, pol, uuid.New(), reservation.MustServiceDate(friday))
		require.NoError(t, err)

		assert.True(t, res.Cancel())
		assert.True(t, res.IsCancelled())
		// Second cancel is an accepted no-op and frees nothing.
		assert.False(t, res.Cancel())
	})

	t.Run("confirmed reservation can be cancelled", func(t *testing.T) {
		res, err := reservation.NewReservation(services, pol, uuid.New(), reservation.MustServiceDate(friday))
		require.NoError(t, err)
		require.NoError(t, res.Confirm(wednesday))

		assert.True(t, res.Cancel())
		assert.Equal(t, reservation.StatusCancelled, res.Status())
	})
}
