package components

import (
	"context"
	"log/slog"

	"volunteer-slots/internal/pkg/config"
	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewDispatcher,
		fx.Annotate(
			func(d *worker.Dispatcher) *worker.Dispatcher { return d },
			fx.As(new(commands.Dispatcher)),
		),
	),
	fx.Invoke(RunDispatcher),
)

func NewDispatcher(
	delivery commands.DeliveryCommands,
	alerts commands.AlertCommands,
	unfinished worker.UnfinishedReads,
	cfg config.Config,
	logger *slog.Logger,
) *worker.Dispatcher {
	return worker.NewDispatcher(delivery, alerts, unfinished, cfg.Dispatch.QueueSize, cfg.Dispatch.AlertInterval, logger)
}

func RunDispatcher(lc fx.Lifecycle, d *worker.Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			d.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			d.Stop()
			return nil
		},
	})
}
