package repository

import (
	"context"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/infra/db"

	"github.com/google/uuid"
)

// DeliveryLogStore binds the delivery write side to the pool so each
// state change commits on its own implicit transaction. The retry engine
// must never hold delivery rows hostage to a booking transaction: a crash
// between attempts has to leave the last recorded state durable.
type DeliveryLogStore struct {
	db   db.DBTX
	repo *DeliveryRepository
}

func NewDeliveryLogStore(dbtx db.DBTX) *DeliveryLogStore {
	return &DeliveryLogStore{db: dbtx, repo: NewDeliveryRepository(dbtx)}
}

func (s *DeliveryLogStore) Append(ctx context.Context, attempt *notification.DeliveryAttempt) (uuid.UUID, error) {
	return s.repo.Append(ctx, s.db, attempt)
}

func (s *DeliveryLogStore) Update(ctx context.Context, attempt *notification.DeliveryAttempt) error {
	return s.repo.Update(ctx, s.db, attempt)
}
