package repository

import (
	"context"
	"encoding/json"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"

	"github.com/google/uuid"
)

// DeliveryRepository is the write side of the delivery audit log. Updates
// never touch a terminal row, which makes retried calls on the same id
// safe no-ops.
type DeliveryRepository struct {
	db db.DBTX
}

func NewDeliveryRepository(dbtx db.DBTX) *DeliveryRepository {
	return &DeliveryRepository{db: dbtx}
}

const appendAttemptQuery = `
INSERT INTO delivery_attempts
	(id, recipient, type, subject, status, provider_message_id, error_message, retry_count, related_id, metadata, created_at, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

func (r *DeliveryRepository) Append(ctx context.Context, tx db.DBTX, attempt *notification.DeliveryAttempt) (uuid.UUID, error) {
	metadata, err := marshalMetadata(attempt.Metadata())
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to marshal attempt metadata", err)
	}

	_, err = tx.Exec(ctx, appendAttemptQuery,
		pgconv.UUIDToPgtype(attempt.ID()),
		attempt.Recipient(),
		attempt.NotificationType().String(),
		attempt.Subject(),
		attempt.Status().String(),
		pgconv.StringPtrToPgtype(attempt.ProviderMessageID()),
		pgconv.StringPtrToPgtype(attempt.ErrorMessage()),
		int32(attempt.RetryCount()),
		pgconv.StringPtrToPgtype(attempt.RelatedID()),
		metadata,
		pgconv.TimeToPgtype(attempt.CreatedAt()),
		pgconv.TimePtrToPgtype(attempt.SentAt()),
	)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to append delivery attempt", err)
	}

	return attempt.ID(), nil
}

const updateAttemptQuery = `
UPDATE delivery_attempts
SET status = $2,
	provider_message_id = $3,
	error_message = $4,
	retry_count = $5,
	sent_at = $6
WHERE id = $1 AND status IN ('pending', 'retrying')`

// Update persists the attempt's current state. Terminal rows are left
// untouched.
func (r *DeliveryRepository) Update(ctx context.Context, tx db.DBTX, attempt *notification.DeliveryAttempt) error {
	_, err := tx.Exec(ctx, updateAttemptQuery,
		pgconv.UUIDToPgtype(attempt.ID()),
		attempt.Status().String(),
		pgconv.StringPtrToPgtype(attempt.ProviderMessageID()),
		pgconv.StringPtrToPgtype(attempt.ErrorMessage()),
		int32(attempt.RetryCount()),
		pgconv.TimePtrToPgtype(attempt.SentAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update delivery attempt", err)
	}
	return nil
}

func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}
