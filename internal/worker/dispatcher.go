package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/usecase/commands"
)

// UnfinishedReads lists non-terminal delivery attempts left behind by a
// previous run, oldest first.
type UnfinishedReads interface {
	FindUnfinished(ctx context.Context, limit int32) ([]*notification.DeliveryAttempt, error)
}

const resumeBatchSize = 100

// Dispatcher owns the background side of the notification pipeline: a
// bounded in-memory queue feeding the retrying delivery engine, a periodic
// unfilled-capacity check, and a one-shot resume of attempts interrupted
// by the last shutdown. It runs a single consumer goroutine, so deliveries
// for the same correlation key are never raced against each other.
type Dispatcher struct {
	queue         chan notification.Request
	delivery      commands.DeliveryCommands
	alerts        commands.AlertCommands
	unfinished    UnfinishedReads
	alertInterval time.Duration
	logger        *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewDispatcher(
	delivery commands.DeliveryCommands,
	alerts commands.AlertCommands,
	unfinished UnfinishedReads,
	queueSize int,
	alertInterval time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		queue:         make(chan notification.Request, queueSize),
		delivery:      delivery,
		alerts:        alerts,
		unfinished:    unfinished,
		alertInterval: alertInterval,
		logger:        logger,
		done:          make(chan struct{}),
	}
}

// Enqueue offers a request to the queue without blocking. A false return
// means the queue is full and the caller should treat the notification as
// dropped; the triggering state change is already committed either way.
func (d *Dispatcher) Enqueue(req notification.Request) bool {
	select {
	case d.queue <- req:
		return true
	default:
		return false
	}
}

// Start launches the consumer goroutine. Safe to call once; the fx
// lifecycle hook guards that for us in practice.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		d.cancel = cancel
		go d.run(runCtx)
	})
}

// Stop cancels the consumer and waits for the in-flight delivery to
// record its state.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		<-d.done
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)

	d.resume(ctx)

	var tick <-chan time.Time
	if d.alertInterval > 0 {
		ticker := time.NewTicker(d.alertInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	d.logger.Info("notification dispatcher started",
		slog.Int("queue_capacity", cap(d.queue)),
		slog.Duration("alert_interval", d.alertInterval))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("notification dispatcher stopped")
			return
		case req := <-d.queue:
			d.deliver(ctx, req)
		case <-tick:
			if _, err := d.alerts.CheckUnfilledCapacity(ctx); err != nil {
				d.logger.Error("unfilled capacity check failed", slog.Any("error", err))
			}
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, req notification.Request) {
	result, err := d.delivery.Send(ctx, req)
	if err != nil {
		d.logger.Error("background delivery failed",
			slog.String("type", req.Type.String()),
			slog.String("related_id", req.RelatedID),
			slog.Any("error", err))
		return
	}
	if result.Status == commands.SendExhausted {
		d.logger.Warn("delivery exhausted all attempts",
			slog.String("type", req.Type.String()),
			slog.String("attempt_id", result.AttemptID.String()),
			slog.String("last_error", result.LastError))
	}
}

// resume picks up attempts that were pending or mid-retry when the last
// process died. The rendered body travels in the attempt metadata, so no
// other table is needed to rebuild the request.
func (d *Dispatcher) resume(ctx context.Context) {
	attempts, err := d.unfinished.FindUnfinished(ctx, resumeBatchSize)
	if err != nil {
		d.logger.Error("failed to load unfinished deliveries", slog.Any("error", err))
		return
	}
	if len(attempts) == 0 {
		return
	}

	d.logger.Info("resuming unfinished deliveries", slog.Int("count", len(attempts)))
	for _, attempt := range attempts {
		if ctx.Err() != nil {
			return
		}
		if _, err := d.delivery.Resume(ctx, attempt); err != nil {
			d.logger.Error("failed to resume delivery",
				slog.String("attempt_id", attempt.ID().String()),
				slog.Any("error", err))
		}
	}
}
