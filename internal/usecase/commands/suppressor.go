package commands

import (
	"context"
	"log/slog"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/pkg/clock"
)

// DuplicateSuppressor decides whether a notification for the same
// (recipient, type, relatedID) was already sent or queued inside the
// trailing window.
//
// The policy is fail-open throughout: a malformed or absent correlation
// key disables deduplication for that request, and a failed store lookup
// is treated as "not a duplicate". A false negative costs a duplicate
// email; a false positive would cost a lost one.
type DuplicateSuppressor struct {
	reads  DeliveryDedupReads
	window time.Duration
	clock  clock.Clock
	logger *slog.Logger
}

func NewDuplicateSuppressor(reads DeliveryDedupReads, window time.Duration, clk clock.Clock, logger *slog.Logger) *DuplicateSuppressor {
	return &DuplicateSuppressor{
		reads:  reads,
		window: window,
		clock:  clk,
		logger: logger,
	}
}

func (s *DuplicateSuppressor) ShouldSuppress(ctx context.Context, recipient string, notificationType notification.Type, relatedID string) bool {
	if !notification.IsValidCorrelationKey(relatedID) {
		s.logger.Debug("correlation key unusable, deduplication disabled for request",
			"type", notificationType.String(),
			"related_id", relatedID)
		return false
	}

	since := s.clock.Now().Add(-s.window)
	found, err := s.reads.HasRecentAttempt(ctx, recipient, notificationType, relatedID, since)
	if err != nil {
		s.logger.Warn("duplicate lookup failed, failing open",
			"type", notificationType.String(),
			"related_id", relatedID,
			"error", err.Error())
		return false
	}
	return found
}
