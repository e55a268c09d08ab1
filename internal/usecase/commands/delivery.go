package commands

import (
	"context"
	"log/slog"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/pkg/errs"

	"github.com/google/uuid"
)

type SendStatus string

const (
	SendDelivered  SendStatus = "delivered"
	SendSuppressed SendStatus = "suppressed"
	SendExhausted  SendStatus = "exhausted"
)

type SendResult struct {
	Status    SendStatus
	MessageID string
	AttemptID uuid.UUID
	LastError string
}

func (r *SendResult) Delivered() bool {
	return r.Status == SendDelivered
}

// DeliveryCommands drives one notification through the gateway with
// bounded retries. Exhausted is a normal, reportable outcome; it never
// propagates as a failure of the reservation change that triggered the
// send.
type DeliveryCommands interface {
	Send(ctx context.Context, req notification.Request) (*SendResult, error)
	Resume(ctx context.Context, attempt *notification.DeliveryAttempt) (*SendResult, error)
	// SendTest pushes a probe message through the whole pipeline so admins
	// can verify mailer configuration end to end.
	SendTest(ctx context.Context, recipient string) (*SendResult, error)
}

// bodyMetadataKey preserves the rendered body in the audit row so an
// interrupted attempt can be resumed after a restart.
const bodyMetadataKey = "body_html"

type deliveryEngineImpl struct {
	log         DeliveryLog
	gateway     Gateway
	suppressor  *DuplicateSuppressor
	clock       clock.Clock
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewDeliveryEngine(
	log DeliveryLog,
	gateway Gateway,
	suppressor *DuplicateSuppressor,
	clk clock.Clock,
	maxAttempts int,
	baseDelay time.Duration,
	logger *slog.Logger,
) DeliveryCommands {
	return &deliveryEngineImpl{
		log:         log,
		gateway:     gateway,
		suppressor:  suppressor,
		clock:       clk,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
		sleep:       sleepWithContext,
	}
}

func (e *deliveryEngineImpl) Send(ctx context.Context, req notification.Request) (*SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if e.suppressor.ShouldSuppress(ctx, req.Recipient, req.Type, req.RelatedID) {
		e.logger.Info("notification suppressed as duplicate",
			"type", req.Type.String(),
			"related_id", req.RelatedID)
		return &SendResult{Status: SendSuppressed}, nil
	}

	attempt := notification.NewDeliveryAttempt(withBodyMetadata(req), e.clock.Now())
	if _, err := e.log.Append(ctx, attempt); err != nil {
		return nil, errs.Wrap(err, "failed to record delivery attempt")
	}

	return e.drive(ctx, req, attempt, 1)
}

func (e *deliveryEngineImpl) SendTest(ctx context.Context, recipient string) (*SendResult, error) {
	return e.Send(ctx, testMessage(recipient, e.clock.Now()))
}

// Resume continues an unfinished attempt from its durable retry count.
// Duplicate suppression is skipped: the attempt was already admitted.
func (e *deliveryEngineImpl) Resume(ctx context.Context, attempt *notification.DeliveryAttempt) (*SendResult, error) {
	if attempt.IsTerminal() {
		return nil, errs.Mark(notification.ErrTerminalAttempt, errs.ErrDomainValidation)
	}
	req := requestFromAttempt(attempt)
	return e.drive(ctx, req, attempt, attempt.RetryCount()+1)
}

func (e *deliveryEngineImpl) drive(ctx context.Context, req notification.Request, attempt *notification.DeliveryAttempt, startAttempt int) (*SendResult, error) {
	// A resumed attempt may arrive with its budget already consumed, in
	// which case the loop never runs and the durable error message is all
	// there is to report.
	var lastErr string
	if msg := attempt.ErrorMessage(); msg != nil {
		lastErr = *msg
	}

	for n := startAttempt; n <= e.maxAttempts; n++ {
		messageID, err := e.gateway.Send(ctx, req)
		if err == nil && messageID != "" {
			if markErr := attempt.MarkSent(messageID, n-1, e.clock.Now()); markErr != nil {
				return nil, markErr
			}
			if updErr := e.log.Update(ctx, attempt); updErr != nil {
				// The email is out; a failed audit update must not turn
				// success into failure.
				e.logger.Error("failed to record sent delivery attempt",
					"attempt_id", attempt.ID().String(),
					"error", updErr.Error())
			}
			return &SendResult{
				Status:    SendDelivered,
				MessageID: messageID,
				AttemptID: attempt.ID(),
			}, nil
		}

		if err != nil {
			lastErr = err.Error()
		} else {
			lastErr = "gateway returned no message id"
		}
		e.logger.Warn("notification delivery attempt failed",
			"attempt_id", attempt.ID().String(),
			"attempt", n,
			"max_attempts", e.maxAttempts,
			"error", lastErr)

		if markErr := attempt.MarkRetrying(lastErr, n); markErr != nil {
			return nil, markErr
		}
		if updErr := e.log.Update(ctx, attempt); updErr != nil {
			return nil, errs.Wrap(updErr, "failed to record retrying delivery attempt")
		}

		if n < e.maxAttempts {
			if err := e.sleep(ctx, e.backoff(n)); err != nil {
				return nil, err
			}
		}
	}

	if markErr := attempt.MarkFailed(lastErr, e.maxAttempts); markErr != nil {
		return nil, markErr
	}
	if updErr := e.log.Update(ctx, attempt); updErr != nil {
		return nil, errs.Wrap(updErr, "failed to record failed delivery attempt")
	}

	e.logger.Error("notification delivery exhausted",
		"attempt_id", attempt.ID().String(),
		"recipient", req.Recipient,
		"type", req.Type.String(),
		"error", lastErr)

	return &SendResult{
		Status:    SendExhausted,
		AttemptID: attempt.ID(),
		LastError: lastErr,
	}, nil
}

// backoff doubles the base delay per consumed attempt: base, 2*base, ...
func (e *deliveryEngineImpl) backoff(attempt int) time.Duration {
	return e.baseDelay * time.Duration(1<<(attempt-1))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func withBodyMetadata(req notification.Request) notification.Request {
	metadata := make(map[string]string, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata[bodyMetadataKey] = req.BodyHTML
	req.Metadata = metadata
	return req
}

func requestFromAttempt(attempt *notification.DeliveryAttempt) notification.Request {
	var relatedID string
	if attempt.RelatedID() != nil {
		relatedID = *attempt.RelatedID()
	}
	return notification.Request{
		Recipient: attempt.Recipient(),
		Type:      attempt.NotificationType(),
		RelatedID: relatedID,
		Subject:   attempt.Subject(),
		BodyHTML:  attempt.Metadata()[bodyMetadataKey],
		Metadata:  attempt.Metadata(),
	}
}
