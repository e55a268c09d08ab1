package mailer

import (
	"context"
	"log/slog"

	"volunteer-slots/internal/domain/notification"

	"github.com/google/uuid"
)

// DevGateway logs notifications instead of sending them. Used when the
// mailer is disabled (local development, tests).
type DevGateway struct {
	logger *slog.Logger
}

func NewDevGateway(logger *slog.Logger) *DevGateway {
	return &DevGateway{logger: logger}
}

func (g *DevGateway) Send(_ context.Context, req notification.Request) (string, error) {
	messageID := "dev-" + uuid.NewString()
	g.logger.Info("dev mailer: notification not sent",
		"recipient", req.Recipient,
		"type", req.Type.String(),
		"subject", req.Subject,
		"related_id", req.RelatedID,
		"message_id", messageID,
	)
	return messageID, nil
}
