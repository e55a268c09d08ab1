package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrTerminalAttempt = errors.New("delivery attempt is terminal")

// DeliveryAttempt is the durable record of one notification's journey
// through the retry pipeline. It is created pending, moves through
// retrying as provider calls fail, and terminates at sent or failed.
type DeliveryAttempt struct {
	id                uuid.UUID
	recipient         string
	notificationType  Type
	subject           string
	status            Status
	providerMessageID *string
	errorMessage      *string
	retryCount        int
	relatedID         *string
	metadata          map[string]string
	createdAt         time.Time
	sentAt            *time.Time
}

func NewDeliveryAttempt(req Request, now time.Time) *DeliveryAttempt {
	var relatedID *string
	if req.RelatedID != "" {
		rid := req.RelatedID
		relatedID = &rid
	}
	return &DeliveryAttempt{
		id:               uuid.New(),
		recipient:        req.Recipient,
		notificationType: req.Type,
		subject:          req.Subject,
		status:           StatusPending,
		relatedID:        relatedID,
		metadata:         req.Metadata,
		createdAt:        now,
	}
}

func ReconstructDeliveryAttempt(
	id uuid.UUID,
	recipient string,
	notificationType Type,
	subject string,
	status Status,
	providerMessageID, errorMessage *string,
	retryCount int,
	relatedID *string,
	metadata map[string]string,
	createdAt time.Time,
	sentAt *time.Time,
) *DeliveryAttempt {
	return &DeliveryAttempt{
		id:                id,
		recipient:         recipient,
		notificationType:  notificationType,
		subject:           subject,
		status:            status,
		providerMessageID: providerMessageID,
		errorMessage:      errorMessage,
		retryCount:        retryCount,
		relatedID:         relatedID,
		metadata:          metadata,
		createdAt:         createdAt,
		sentAt:            sentAt,
	}
}

// MarkRetrying records a failed provider call. retryCount carries the
// number of attempts consumed so far.
func (a *DeliveryAttempt) MarkRetrying(errMsg string, attempt int) error {
	if a.status.IsTerminal() {
		return ErrTerminalAttempt
	}
	a.status = StatusRetrying
	a.errorMessage = &errMsg
	a.retryCount = attempt
	return nil
}

// MarkSent terminates the attempt successfully. retries is the count of
// failed attempts that preceded the successful one.
func (a *DeliveryAttempt) MarkSent(providerMessageID string, retries int, now time.Time) error {
	if a.status.IsTerminal() {
		return ErrTerminalAttempt
	}
	a.status = StatusSent
	a.providerMessageID = &providerMessageID
	a.retryCount = retries
	a.sentAt = &now
	return nil
}

// MarkFailed terminates the attempt after retries are exhausted.
func (a *DeliveryAttempt) MarkFailed(errMsg string, retries int) error {
	if a.status.IsTerminal() {
		return ErrTerminalAttempt
	}
	a.status = StatusFailed
	a.errorMessage = &errMsg
	a.retryCount = retries
	return nil
}

func (a *DeliveryAttempt) IsTerminal() bool {
	return a.status.IsTerminal()
}

func (a *DeliveryAttempt) ID() uuid.UUID                { return a.id }
func (a *DeliveryAttempt) Recipient() string            { return a.recipient }
func (a *DeliveryAttempt) NotificationType() Type       { return a.notificationType }
func (a *DeliveryAttempt) Subject() string              { return a.subject }
func (a *DeliveryAttempt) Status() Status               { return a.status }
func (a *DeliveryAttempt) ProviderMessageID() *string   { return a.providerMessageID }
func (a *DeliveryAttempt) ErrorMessage() *string        { return a.errorMessage }
func (a *DeliveryAttempt) RetryCount() int              { return a.retryCount }
func (a *DeliveryAttempt) RelatedID() *string           { return a.relatedID }
func (a *DeliveryAttempt) Metadata() map[string]string  { return a.metadata }
func (a *DeliveryAttempt) CreatedAt() time.Time         { return a.createdAt }
func (a *DeliveryAttempt) SentAt() *time.Time           { return a.sentAt }
