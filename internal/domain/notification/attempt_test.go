//go:build unit

package notification_test

import (
	"strings"
	"testing"
	"time"

	"volunteer-slots/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

func newRequest() notification.Request {
	return notification.Request{
		Recipient: "admin@example.org",
		Type:      notification.TypeNewReservation,
		RelatedID: uuid.New().String(),
		Subject:   "New reservation",
		BodyHTML:  "<p>hi</p>",
	}
}

func TestRequestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, newRequest().Validate())
	})

	t.Run("missing recipient", func(t *testing.T) {
		req := newRequest()
		req.Recipient = "  "
		assert.ErrorIs(t, req.Validate(), notification.ErrEmptyRecipient)
	})

	t.Run("unknown type", func(t *testing.T) {
		req := newRequest()
		req.Type = notification.Type("push")
		assert.ErrorIs(t, req.Validate(), notification.ErrInvalidType)
	})

	t.Run("missing subject", func(t *testing.T) {
		req := newRequest()
		req.Subject = ""
		assert.ErrorIs(t, req.Validate(), notification.ErrEmptySubject)
	})
}

func TestCorrelationKey(t *testing.T) {
	valid := []string{
		uuid.New().String(),
		"alert-2026-09-03",
		"a",
		"A1.b2:c3_d4-e5",
	}
	for _, key := range valid {
		assert.True(t, notification.IsValidCorrelationKey(key), key)
	}

	invalid := []string{
		"",
		"-starts-with-dash",
		".starts-with-dot",
		"has spaces",
		"has/slash",
		strings.Repeat("a", 121),
	}
	for _, key := range invalid {
		assert.False(t, notification.IsValidCorrelationKey(key), key)
	}

	t.Run("requests without a key are not deduplicable", func(t *testing.T) {
		req := newRequest()
		req.RelatedID = ""
		assert.False(t, req.Deduplicable())
		assert.True(t, newRequest().Deduplicable())
	})
}

func TestDeliveryAttempt(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		attempt := notification.NewDeliveryAttempt(newRequest(), now)

		assert.NotEqual(t, uuid.Nil, attempt.ID())
		assert.Equal(t, notification.StatusPending, attempt.Status())
		assert.Equal(t, 0, attempt.RetryCount())
		assert.False(t, attempt.IsTerminal())
		require.NotNil(t, attempt.RelatedID())
	})

	t.Run("empty related id stored as null", func(t *testing.T) {
		req := newRequest()
		req.RelatedID = ""
		attempt := notification.NewDeliveryAttempt(req, now)
		assert.Nil(t, attempt.RelatedID())
	})

	t.Run("retrying records consumed attempts", func(t *testing.T) {
		attempt := notification.NewDeliveryAttempt(newRequest(), now)

		require.NoError(t, attempt.MarkRetrying("timeout", 1))
		assert.Equal(t, notification.StatusRetrying, attempt.Status())
		assert.Equal(t, 1, attempt.RetryCount())
		require.NotNil(t, attempt.ErrorMessage())
		assert.Equal(t, "timeout", *attempt.ErrorMessage())
		assert.False(t, attempt.IsTerminal())
	})

	t.Run("sent after retries keeps the preceding failure count", func(t *testing.T) {
		attempt := notification.NewDeliveryAttempt(newRequest(), now)
		require.NoError(t, attempt.MarkRetrying("timeout", 1))
		require.NoError(t, attempt.MarkRetrying("timeout", 2))

		sentAt := now.Add(3 * time.Second)
		require.NoError(t, attempt.MarkSent("pm-123", 2, sentAt))

		assert.Equal(t, notification.StatusSent, attempt.Status())
		assert.Equal(t, 2, attempt.RetryCount())
		require.NotNil(t, attempt.ProviderMessageID())
		assert.Equal(t, "pm-123", *attempt.ProviderMessageID())
		require.NotNil(t, attempt.SentAt())
		assert.Equal(t, sentAt, *attempt.SentAt())
		assert.True(t, attempt.IsTerminal())
	})

	t.Run("failed is terminal", func(t *testing.T) {
		attempt := notification.NewDeliveryAttempt(newRequest(), now)
		require.NoError(t, attempt.MarkFailed("still down", 3))

		assert.Equal(t, notification.StatusFailed, attempt.Status())
		assert.Equal(t, 3, attempt.RetryCount())
		assert.True(t, attempt.IsTerminal())
	})

	t.Run("terminal attempts refuse further transitions", func(t *testing.T) {
		attempt := notification.NewDeliveryAttempt(newRequest(), now)
		require.NoError(t, attempt.MarkSent("pm-1", 0, now))

		assert.ErrorIs(t, attempt.MarkRetrying("late", 1), notification.ErrTerminalAttempt)
		assert.ErrorIs(t, attempt.MarkFailed("late", 1), notification.ErrTerminalAttempt)
		assert.ErrorIs(t, attempt.MarkSent("pm-2", 0, now), notification.ErrTerminalAttempt)
	})
}
