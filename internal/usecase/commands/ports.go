package commands

import (
	"context"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/usecase/queries"

	"github.com/google/uuid"
)

// Gateway is the opaque transport that actually sends a notification. A
// send succeeded only when the provider returned a concrete message id.
type Gateway interface {
	Send(ctx context.Context, req notification.Request) (providerMessageID string, err error)
}

// DeliveryLog persists delivery attempt state outside the booking
// transaction; every state change commits on its own so a restarted
// dispatcher resumes from durable state.
type DeliveryLog interface {
	Append(ctx context.Context, attempt *notification.DeliveryAttempt) (uuid.UUID, error)
	Update(ctx context.Context, attempt *notification.DeliveryAttempt) error
}

// DeliveryDedupReads is the suppression lookup over the delivery log.
type DeliveryDedupReads interface {
	HasRecentAttempt(ctx context.Context, recipient string, notificationType notification.Type, relatedID string, since time.Time) (bool, error)
}

// PolicyReads serves the cached capacity policy; Invalidate drops the
// cache after an admin update.
type PolicyReads interface {
	Get(ctx context.Context) (*queries.PolicyView, error)
	Invalidate()
}

// Dispatcher hands a notification request to the background dispatch
// pipeline without blocking the caller.
type Dispatcher interface {
	Enqueue(req notification.Request) bool
}

// ReservationReads is the read side used for post-commit views.
type ReservationReads interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error)
}
