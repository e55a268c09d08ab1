package readstore

import (
	"context"
	"encoding/json"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"
	"volunteer-slots/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DeliveryReadStore struct {
	db db.DBTX
}

func NewDeliveryReadStore(dbtx db.DBTX) *DeliveryReadStore {
	return &DeliveryReadStore{db: dbtx}
}

const recentAttemptExistsQuery = `
SELECT EXISTS(
	SELECT 1 FROM delivery_attempts
	WHERE recipient = $1 AND type = $2 AND related_id = $3
		AND status IN ('pending', 'sent')
		AND created_at >= $4
)`

// HasRecentAttempt reports whether an attempt for the same
// (recipient, type, relatedID) reached pending or sent since the given
// instant. This is the duplicate suppression lookup.
func (s *DeliveryReadStore) HasRecentAttempt(ctx context.Context, recipient string, notificationType notification.Type, relatedID string, since time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, recentAttemptExistsQuery,
		recipient,
		notificationType.String(),
		relatedID,
		pgconv.TimeToPgtype(since),
	).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check recent delivery attempts", err)
	}
	return exists, nil
}

const deliveryAttemptColumns = `
id, recipient, type, subject, status, provider_message_id, error_message, retry_count, related_id, metadata, created_at, sent_at`

func (s *DeliveryReadStore) ListRecent(ctx context.Context, limit int32) ([]*queries.DeliveryAttemptView, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+deliveryAttemptColumns+` FROM delivery_attempts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list delivery attempts", err)
	}
	defer rows.Close()

	var views []*queries.DeliveryAttemptView
	for rows.Next() {
		attempt, err := scanDeliveryAttempt(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan delivery attempt row", err)
		}
		views = append(views, toDeliveryAttemptView(attempt))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate delivery attempt rows", err)
	}
	return views, nil
}

// FindUnfinished returns non-terminal attempts, oldest first, so a
// restarted dispatcher can resume them from durable state.
func (s *DeliveryReadStore) FindUnfinished(ctx context.Context, limit int32) ([]*notification.DeliveryAttempt, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+deliveryAttemptColumns+` FROM delivery_attempts WHERE status IN ('pending', 'retrying') ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find unfinished delivery attempts", err)
	}
	defer rows.Close()

	var attempts []*notification.DeliveryAttempt
	for rows.Next() {
		attempt, err := scanDeliveryAttempt(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan delivery attempt row", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate delivery attempt rows", err)
	}
	return attempts, nil
}

func scanDeliveryAttempt(row rowScanner) (*notification.DeliveryAttempt, error) {
	var (
		id                pgtype.UUID
		recipient         string
		attemptType       string
		subject           string
		status            string
		providerMessageID pgtype.Text
		errorMessage      pgtype.Text
		retryCount        int32
		relatedID         pgtype.Text
		metadataRaw       []byte
		createdAt         pgtype.Timestamptz
		sentAt            pgtype.Timestamptz
	)
	err := row.Scan(&id, &recipient, &attemptType, &subject, &status,
		&providerMessageID, &errorMessage, &retryCount, &relatedID, &metadataRaw, &createdAt, &sentAt)
	if err != nil {
		return nil, err
	}

	var metadata map[string]string
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return nil, err
		}
	}

	return notification.ReconstructDeliveryAttempt(
		uuid.UUID(id.Bytes),
		recipient,
		notification.Type(attemptType),
		subject,
		notification.Status(status),
		pgconv.StringPtrFromPgtype(providerMessageID),
		pgconv.StringPtrFromPgtype(errorMessage),
		int(retryCount),
		pgconv.StringPtrFromPgtype(relatedID),
		metadata,
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimePtrFromPgtype(sentAt),
	), nil
}

func toDeliveryAttemptView(a *notification.DeliveryAttempt) *queries.DeliveryAttemptView {
	return &queries.DeliveryAttemptView{
		ID:                a.ID(),
		Recipient:         a.Recipient(),
		Type:              a.NotificationType().String(),
		Subject:           a.Subject(),
		Status:            a.Status().String(),
		ProviderMessageID: a.ProviderMessageID(),
		ErrorMessage:      a.ErrorMessage(),
		RetryCount:        a.RetryCount(),
		RelatedID:         a.RelatedID(),
		Metadata:          a.Metadata(),
		CreatedAt:         a.CreatedAt(),
		SentAt:            a.SentAt(),
	}
}
