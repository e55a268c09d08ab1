//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliveryLog struct {
	appended  []*notification.DeliveryAttempt
	updates   int
	appendErr error
	updateErr error
}

func (f *fakeDeliveryLog) Append(_ context.Context, attempt *notification.DeliveryAttempt) (uuid.UUID, error) {
	if f.appendErr != nil {
		return uuid.Nil, f.appendErr
	}
	f.appended = append(f.appended, attempt)
	return attempt.ID(), nil
}

func (f *fakeDeliveryLog) Update(_ context.Context, _ *notification.DeliveryAttempt) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	return nil
}

// fakeGateway fails its first `failures` calls, then succeeds.
type fakeGateway struct {
	failures  int
	calls     int
	messageID string
}

func (f *fakeGateway) Send(_ context.Context, _ notification.Request) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("provider unavailable")
	}
	return f.messageID, nil
}

func newEngine(log *fakeDeliveryLog, gw *fakeGateway, dedup *fakeDedupReads) commands.DeliveryCommands {
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	suppressor := commands.NewDuplicateSuppressor(dedup, 5*time.Minute, clk, discardLogger())
	return commands.NewDeliveryEngine(log, gw, suppressor, clk, 3, time.Millisecond, discardLogger())
}

func sendRequest() notification.Request {
	return notification.Request{
		Recipient: "volunteer@example.org",
		Type:      notification.TypeConfirmation,
		RelatedID: uuid.New().String(),
		Subject:   "Your slot is confirmed",
		BodyHTML:  "<p>confirmed</p>",
	}
}

func TestDeliveryEngineSend(t *testing.T) {
	t.Run("delivered on first attempt", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{messageID: "pm-1"}
		engine := newEngine(log, gw, &fakeDedupReads{})

		result, err := engine.Send(context.Background(), sendRequest())
		require.NoError(t, err)

		assert.Equal(t, commands.SendDelivered, result.Status)
		assert.Equal(t, "pm-1", result.MessageID)
		assert.Equal(t, 1, gw.calls)

		require.Len(t, log.appended, 1)
		attempt := log.appended[0]
		assert.Equal(t, notification.StatusSent, attempt.Status())
		assert.Equal(t, 0, attempt.RetryCount())
	})

	t.Run("delivered on third attempt counts two retries", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{failures: 2, messageID: "pm-2"}
		engine := newEngine(log, gw, &fakeDedupReads{})

		result, err := engine.Send(context.Background(), sendRequest())
		require.NoError(t, err)

		assert.Equal(t, commands.SendDelivered, result.Status)
		assert.Equal(t, 3, gw.calls)

		attempt := log.appended[0]
		assert.Equal(t, notification.StatusSent, attempt.Status())
		assert.Equal(t, 2, attempt.RetryCount())
	})

	t.Run("exhaustion is terminal failed with full retry count", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{failures: 10}
		engine := newEngine(log, gw, &fakeDedupReads{})

		result, err := engine.Send(context.Background(), sendRequest())
		require.NoError(t, err)

		assert.Equal(t, commands.SendExhausted, result.Status)
		assert.NotEmpty(t, result.LastError)
		assert.Equal(t, 3, gw.calls)

		attempt := log.appended[0]
		assert.Equal(t, notification.StatusFailed, attempt.Status())
		assert.Equal(t, 3, attempt.RetryCount())
	})

	t.Run("empty provider message id counts as failure", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{messageID: ""}
		engine := newEngine(log, gw, &fakeDedupReads{})

		result, err := engine.Send(context.Background(), sendRequest())
		require.NoError(t, err)
		assert.Equal(t, commands.SendExhausted, result.Status)
	})

	t.Run("duplicate is suppressed before any send", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{messageID: "pm-3"}
		engine := newEngine(log, gw, &fakeDedupReads{found: true})

		result, err := engine.Send(context.Background(), sendRequest())
		require.NoError(t, err)

		assert.Equal(t, commands.SendSuppressed, result.Status)
		assert.Equal(t, 0, gw.calls)
		assert.Empty(t, log.appended)
	})

	t.Run("rendered body is preserved in attempt metadata", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{messageID: "pm-4"}
		engine := newEngine(log, gw, &fakeDedupReads{})

		req := sendRequest()
		_, err := engine.Send(context.Background(), req)
		require.NoError(t, err)

		attempt := log.appended[0]
		assert.Equal(t, req.BodyHTML, attempt.Metadata()["body_html"])
	})

	t.Run("invalid request never reaches the log", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		engine := newEngine(log, &fakeGateway{messageID: "pm"}, &fakeDedupReads{})

		req := sendRequest()
		req.Recipient = ""
		_, err := engine.Send(context.Background(), req)
		require.Error(t, err)
		assert.Empty(t, log.appended)
	})
}

func TestDeliveryEngineResume(t *testing.T) {
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	unfinishedAttempt := func(retryCount int) *notification.DeliveryAttempt {
		errMsg := "provider unavailable"
		rid := uuid.New().String()
		return notification.ReconstructDeliveryAttempt(
			uuid.New(),
			"volunteer@example.org",
			notification.TypeConfirmation,
			"Your slot is confirmed",
			notification.StatusRetrying,
			nil, &errMsg,
			retryCount,
			&rid,
			map[string]string{"body_html": "<p>confirmed</p>"},
			now.Add(-time.Hour),
			nil,
		)
	}

	t.Run("resume uses only the remaining attempts", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{messageID: "pm-5"}
		engine := newEngine(log, gw, &fakeDedupReads{})

		attempt := unfinishedAttempt(2)
		result, err := engine.Resume(context.Background(), attempt)
		require.NoError(t, err)

		assert.Equal(t, commands.SendDelivered, result.Status)
		// Attempt three is the only one left.
		assert.Equal(t, 1, gw.calls)
		assert.Equal(t, notification.StatusSent, attempt.Status())
		assert.Equal(t, 2, attempt.RetryCount())
	})

	t.Run("resume skips duplicate suppression", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{messageID: "pm-6"}
		dedup := &fakeDedupReads{found: true}
		engine := newEngine(log, gw, dedup)

		result, err := engine.Resume(context.Background(), unfinishedAttempt(0))
		require.NoError(t, err)
		assert.Equal(t, commands.SendDelivered, result.Status)
		assert.Equal(t, 0, dedup.calls)
	})

	t.Run("resume with no attempts left fails terminally", func(t *testing.T) {
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{failures: 10}
		engine := newEngine(log, gw, &fakeDedupReads{})

		attempt := unfinishedAttempt(2)
		result, err := engine.Resume(context.Background(), attempt)
		require.NoError(t, err)

		assert.Equal(t, commands.SendExhausted, result.Status)
		assert.Equal(t, 1, gw.calls)
		assert.Equal(t, notification.StatusFailed, attempt.Status())
		assert.Equal(t, 3, attempt.RetryCount())
	})

	t.Run("resume with budget already consumed keeps the durable error", func(t *testing.T) {
		// A crash between the last MarkRetrying update and MarkFailed
		// leaves the row retrying with the full retry count.
		log := &fakeDeliveryLog{}
		gw := &fakeGateway{failures: 10}
		engine := newEngine(log, gw, &fakeDedupReads{})

		attempt := unfinishedAttempt(3)
		result, err := engine.Resume(context.Background(), attempt)
		require.NoError(t, err)

		assert.Equal(t, commands.SendExhausted, result.Status)
		assert.Equal(t, 0, gw.calls)
		assert.Equal(t, notification.StatusFailed, attempt.Status())
		assert.Equal(t, "provider unavailable", result.LastError)
		require.NotNil(t, attempt.ErrorMessage())
		assert.Equal(t, "provider unavailable", *attempt.ErrorMessage())
	})

	t.Run("terminal attempt is rejected", func(t *testing.T) {
		engine := newEngine(&fakeDeliveryLog{}, &fakeGateway{messageID: "pm"}, &fakeDedupReads{})

		attempt := unfinishedAttempt(0)
		require.NoError(t, attempt.MarkSent("pm-old", 0, now))

		_, err := engine.Resume(context.Background(), attempt)
		assert.Error(t, err)
	})
}
