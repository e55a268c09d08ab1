package components

import (
	"log/slog"

	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/pkg/config"
	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/usecase/queries"
	"volunteer-slots/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		queries.NewDeliveryQueries,
		queries.NewVolunteerQueries,
		queries.NewPolicyQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewSuppressor,
		NewDeliveryEngine,
		NewBookingCommands,
		NewAlertCommands,
		commands.NewPolicyCommands,
		commands.NewVolunteerCommands,
	),
)

func NewSuppressor(reads commands.DeliveryDedupReads, cfg config.Config, clk clock.Clock, logger *slog.Logger) *commands.DuplicateSuppressor {
	return commands.NewDuplicateSuppressor(reads, cfg.Dispatch.DedupWindow, clk, logger)
}

func NewDeliveryEngine(
	log commands.DeliveryLog,
	gateway commands.Gateway,
	suppressor *commands.DuplicateSuppressor,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) commands.DeliveryCommands {
	return commands.NewDeliveryEngine(log, gateway, suppressor, clk, cfg.Dispatch.MaxAttempts, cfg.Dispatch.BaseDelay, logger)
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	policies commands.PolicyReads,
	views commands.ReservationReads,
	dispatcher commands.Dispatcher,
	delivery commands.DeliveryCommands,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) commands.BookingCommands {
	return commands.NewBookingCommands(uow, policies, views, dispatcher, delivery, clk, cfg.Mailer.AdminEmail, logger)
}

func NewAlertCommands(
	fill commands.DayFillReads,
	policies commands.PolicyReads,
	delivery commands.DeliveryCommands,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) commands.AlertCommands {
	return commands.NewAlertCommands(fill, policies, delivery, clk, cfg.Mailer.AdminEmail, logger)
}
