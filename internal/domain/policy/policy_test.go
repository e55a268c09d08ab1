//go:build unit

package policy_test

import (
	"testing"
	"time"

	"volunteer-slots/internal/domain/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapacityPolicy(t *testing.T) {
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid values", func(t *testing.T) {
		pol, err := policy.NewCapacityPolicy(6, 24, start, now)
		require.NoError(t, err)
		assert.Equal(t, 6, pol.MaxPerDay())
		assert.Equal(t, 24, pol.NotifyLeadHours())
		assert.Equal(t, start, pol.ServiceStart())
		assert.Equal(t, now, pol.UpdatedAt())
	})

	t.Run("capacity below one", func(t *testing.T) {
		_, err := policy.NewCapacityPolicy(0, 24, start, now)
		assert.ErrorIs(t, err, policy.ErrInvalidMaxPerDay)
	})

	t.Run("negative lead hours", func(t *testing.T) {
		_, err := policy.NewCapacityPolicy(6, -1, start, now)
		assert.ErrorIs(t, err, policy.ErrInvalidLeadHours)
	})

	t.Run("missing service start", func(t *testing.T) {
		_, err := policy.NewCapacityPolicy(6, 24, time.Time{}, now)
		assert.ErrorIs(t, err, policy.ErrZeroServiceStart)
	})
}
