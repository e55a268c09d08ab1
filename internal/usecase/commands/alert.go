package commands

import (
	"context"
	"log/slog"
	"time"

	"volunteer-slots/internal/domain/reservation"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/usecase/queries"
)

// DayFillReads counts committed active reservations for one day.
type DayFillReads interface {
	ActiveCountByDate(ctx context.Context, date time.Time) (int, error)
}

type AlertCommands interface {
	// CheckUnfilledCapacity inspects the next service day and, when slots
	// remain open, sends the administrator an alert through the retrying
	// delivery pipeline. The per-day correlation key keeps repeated checks
	// inside the dedup window from mailing twice.
	CheckUnfilledCapacity(ctx context.Context) (*UnfilledCheckResult, error)
}

// UnfilledCheckResult reports what the check saw; Alerted is false both
// when the day is full and when the alert was suppressed as a duplicate.
type UnfilledCheckResult struct {
	Fill     queries.DayFillView
	Alerted  bool
	Skipped  bool
	SendInfo *SendResult
}

type alertCommandsImpl struct {
	fill       DayFillReads
	policies   PolicyReads
	delivery   DeliveryCommands
	clock      clock.Clock
	adminEmail string
	logger     *slog.Logger
}

func NewAlertCommands(
	fill DayFillReads,
	policies PolicyReads,
	delivery DeliveryCommands,
	clk clock.Clock,
	adminEmail string,
	logger *slog.Logger,
) AlertCommands {
	return &alertCommandsImpl{
		fill:       fill,
		policies:   policies,
		delivery:   delivery,
		clock:      clk,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

func (c *alertCommandsImpl) CheckUnfilledCapacity(ctx context.Context) (*UnfilledCheckResult, error) {
	today := reservation.MustServiceDate(c.clock.Now())
	candidate := today.Next()
	if !candidate.IsServiceDay() {
		// Weekends carry no capacity; nothing to alert about.
		return &UnfilledCheckResult{Skipped: true}, nil
	}

	pol, err := c.policies.Get(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	count, err := c.fill.ActiveCountByDate(ctx, candidate.Time())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	result := &UnfilledCheckResult{
		Fill: queries.DayFillView{Date: candidate.Time(), ActiveCount: count, MaxPerDay: pol.MaxPerDay},
	}
	if result.Fill.OpenSlots() == 0 {
		return result, nil
	}

	sendRes, err := c.delivery.Send(ctx, unfilledAlertMessage(c.adminEmail, result.Fill))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrNotificationDelivery)
	}
	result.SendInfo = sendRes
	result.Alerted = sendRes.Delivered()
	if sendRes.Status == SendSuppressed {
		c.logger.Debug("unfilled capacity alert suppressed",
			slog.String("date", candidate.String()))
	}
	return result, nil
}
