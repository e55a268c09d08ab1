package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"volunteer-slots/internal/domain/policy"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/pkg/config"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/usecase/queries"
	"volunteer-slots/internal/usecase/shared"

	"go.uber.org/fx"
)

var PolicyModule = fx.Module("policy",
	fx.Invoke(EnsureDefaultPolicy),
)

// EnsureDefaultPolicy seeds the capacity policy singleton on first boot so
// the reserve path never runs without a limit. An existing row is left
// untouched.
func EnsureDefaultPolicy(
	lc fx.Lifecycle,
	cfg config.Config,
	uow shared.UnitOfWork,
	policyViews queries.PolicyQueries,
	clk clock.Clock,
	logger *slog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := policyViews.Get(ctx)
			if err == nil {
				return nil
			}
			if !errors.Is(err, errs.ErrPolicyNotFound) {
				return err
			}

			pol, err := policy.NewCapacityPolicy(
				cfg.Booking.DefaultMaxPerDay,
				cfg.Booking.DefaultNotifyLeadHours,
				cfg.Booking.ServiceStart,
				clk.Now(),
			)
			if err != nil {
				return err
			}

			err = uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
				return tx.Policies().Save(ctx, tx.DB(), pol)
			})
			if err != nil {
				return err
			}

			logger.Info("seeded default capacity policy",
				slog.Int("max_per_day", cfg.Booking.DefaultMaxPerDay),
				slog.Int("notify_lead_hours", cfg.Booking.DefaultNotifyLeadHours))
			return nil
		},
	})
}
