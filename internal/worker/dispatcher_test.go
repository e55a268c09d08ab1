//go:build unit

package worker_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelivery struct {
	mu      sync.Mutex
	sent    []notification.Request
	resumed []uuid.UUID
}

func (r *recordingDelivery) Send(_ context.Context, req notification.Request) (*commands.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, req)
	return &commands.SendResult{Status: commands.SendDelivered, MessageID: "pm-1"}, nil
}

func (r *recordingDelivery) Resume(_ context.Context, attempt *notification.DeliveryAttempt) (*commands.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumed = append(r.resumed, attempt.ID())
	return &commands.SendResult{Status: commands.SendDelivered}, nil
}

func (r *recordingDelivery) SendTest(ctx context.Context, recipient string) (*commands.SendResult, error) {
	return r.Send(ctx, notification.Request{Recipient: recipient, Type: notification.TypeTest, Subject: "test"})
}

func (r *recordingDelivery) sentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recordingDelivery) resumedIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.resumed...)
}

type countingAlerts struct {
	mu    sync.Mutex
	calls int
}

func (a *countingAlerts) CheckUnfilledCapacity(_ context.Context) (*commands.UnfilledCheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return &commands.UnfilledCheckResult{Skipped: true}, nil
}

func (a *countingAlerts) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type staticUnfinished struct {
	attempts []*notification.DeliveryAttempt
}

func (s *staticUnfinished) FindUnfinished(_ context.Context, _ int32) ([]*notification.DeliveryAttempt, error) {
	return s.attempts, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingAttempt() *notification.DeliveryAttempt {
	rid := uuid.NewString()
	return notification.ReconstructDeliveryAttempt(
		uuid.New(), "vol@example.org", notification.TypeConfirmation, "Your slot",
		notification.StatusPending, nil, nil, 0, &rid,
		map[string]string{"body_html": "<p>hello</p>"},
		time.Now().Add(-time.Minute), nil,
	)
}

func TestDispatcherEnqueue(t *testing.T) {
	t.Run("full queue refuses without blocking", func(t *testing.T) {
		d := worker.NewDispatcher(&recordingDelivery{}, &countingAlerts{}, &staticUnfinished{}, 1, 0, discardLogger())

		req := notification.Request{Recipient: "a@example.org", Type: notification.TypeTest, Subject: "t"}
		assert.True(t, d.Enqueue(req))
		assert.False(t, d.Enqueue(req), "second offer exceeds the single-slot queue")
	})
}

func TestDispatcherRun(t *testing.T) {
	t.Run("drains the queue through the delivery engine", func(t *testing.T) {
		delivery := &recordingDelivery{}
		d := worker.NewDispatcher(delivery, &countingAlerts{}, &staticUnfinished{}, 8, 0, discardLogger())

		require.True(t, d.Enqueue(notification.Request{Recipient: "a@example.org", Type: notification.TypeTest, Subject: "t"}))
		require.True(t, d.Enqueue(notification.Request{Recipient: "b@example.org", Type: notification.TypeTest, Subject: "t"}))

		d.Start(context.Background())
		require.Eventually(t, func() bool { return delivery.sentCount() == 2 },
			2*time.Second, 10*time.Millisecond)
		d.Stop()
	})

	t.Run("resumes unfinished attempts at startup", func(t *testing.T) {
		delivery := &recordingDelivery{}
		first, second := pendingAttempt(), pendingAttempt()
		d := worker.NewDispatcher(delivery, &countingAlerts{},
			&staticUnfinished{attempts: []*notification.DeliveryAttempt{first, second}}, 8, 0, discardLogger())

		d.Start(context.Background())
		require.Eventually(t, func() bool { return len(delivery.resumedIDs()) == 2 },
			2*time.Second, 10*time.Millisecond)
		d.Stop()

		assert.Equal(t, []uuid.UUID{first.ID(), second.ID()}, delivery.resumedIDs(), "oldest first")
	})

	t.Run("periodic tick runs the unfilled check", func(t *testing.T) {
		alerts := &countingAlerts{}
		d := worker.NewDispatcher(&recordingDelivery{}, alerts, &staticUnfinished{}, 8, 10*time.Millisecond, discardLogger())

		d.Start(context.Background())
		require.Eventually(t, func() bool { return alerts.callCount() >= 2 },
			2*time.Second, 5*time.Millisecond)
		d.Stop()
	})

	t.Run("stop is idempotent and outlives the caller context", func(t *testing.T) {
		delivery := &recordingDelivery{}
		d := worker.NewDispatcher(delivery, &countingAlerts{}, &staticUnfinished{}, 8, 0, discardLogger())

		startCtx, cancel := context.WithCancel(context.Background())
		d.Start(startCtx)
		cancel() // the consumer detaches from the start context

		require.True(t, d.Enqueue(notification.Request{Recipient: "c@example.org", Type: notification.TypeTest, Subject: "t"}))
		require.Eventually(t, func() bool { return delivery.sentCount() == 1 },
			2*time.Second, 10*time.Millisecond)

		d.Stop()
		d.Stop()
	})
}
