//go:build unit

package volunteer_test

import (
	"strings"
	"testing"
	"time"

	"volunteer-slots/internal/domain/volunteer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		email, err := volunteer.NewEmail("  Sam.Vol@Example.ORG ")
		require.NoError(t, err)
		assert.Equal(t, "sam.vol@example.org", email.String())
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "no-at-sign", "a@b", "spaces in@example.org"} {
			_, err := volunteer.NewEmail(raw)
			assert.ErrorIs(t, err, volunteer.ErrInvalidEmail, "input %q", raw)
		}
	})
}

func TestName(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		name, err := volunteer.NewName("  Sam Vol  ")
		require.NoError(t, err)
		assert.Equal(t, "Sam Vol", name.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := volunteer.NewName("   ")
		assert.ErrorIs(t, err, volunteer.ErrEmptyName)
	})

	t.Run("rejects overly long", func(t *testing.T) {
		_, err := volunteer.NewName(strings.Repeat("x", 121))
		assert.ErrorIs(t, err, volunteer.ErrNameTooLong)
	})
}

func TestVolunteerLifecycle(t *testing.T) {
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	email, err := volunteer.NewEmail("vol@example.org")
	require.NoError(t, err)
	name, err := volunteer.NewName("Sam Vol")
	require.NoError(t, err)

	t.Run("new volunteers start active", func(t *testing.T) {
		vol := volunteer.NewVolunteer(email, name, "", now)
		assert.True(t, vol.IsActive())
		assert.Equal(t, volunteer.StatusActive, vol.Status())
		assert.Equal(t, now, vol.CreatedAt())
	})

	t.Run("profile update keeps identity", func(t *testing.T) {
		vol := volunteer.NewVolunteer(email, name, "", now)
		newName, err := volunteer.NewName("Sam Volunteer")
		require.NoError(t, err)

		later := now.Add(time.Hour)
		vol.UpdateProfile(newName, "07700 900123", later)

		assert.Equal(t, "Sam Volunteer", vol.Name().String())
		assert.Equal(t, "07700 900123", vol.Phone())
		assert.Equal(t, email, vol.Email())
		assert.Equal(t, later, vol.UpdatedAt())
	})

	t.Run("deactivation is a soft state change", func(t *testing.T) {
		vol := volunteer.NewVolunteer(email, name, "", now)
		vol.Deactivate(now.Add(time.Hour))

		assert.False(t, vol.IsActive())
		assert.Equal(t, volunteer.StatusInactive, vol.Status())
	})
}
