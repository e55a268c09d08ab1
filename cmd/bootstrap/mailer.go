package bootstrap

import (
	"log/slog"

	"volunteer-slots/internal/infra/mailer"
	"volunteer-slots/internal/pkg/config"
	"volunteer-slots/internal/usecase/commands"

	"go.uber.org/fx"
)

var MailerModule = fx.Module("mailer",
	fx.Provide(
		NewGateway,
	),
)

// NewGateway selects the outbound transport. With the mailer disabled
// every send goes to the log-only dev gateway, which keeps local stacks
// and CI from needing Postmark credentials.
func NewGateway(cfg config.Config, logger *slog.Logger) (commands.Gateway, error) {
	if !cfg.Mailer.Enabled {
		logger.Info("mailer disabled, using dev gateway")
		return mailer.NewDevGateway(logger), nil
	}
	return mailer.NewPostmarkGateway(cfg.Mailer)
}
