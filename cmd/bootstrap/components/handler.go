package components

import (
	"volunteer-slots/internal/handler"
	"volunteer-slots/internal/handler/api"
	"volunteer-slots/internal/handler/middleware"
	"volunteer-slots/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewVolunteerHandler,
		api.NewAdminHandler,
		NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewAuthMiddleware(cfg config.Config) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(cfg.Auth)
}
