package commands

import (
	"context"
	"log/slog"

	"volunteer-slots/internal/domain/policy"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/usecase/queries"
	"volunteer-slots/internal/usecase/shared"
)

type UpdatePolicyInput struct {
	MaxPerDay       int
	NotifyLeadHours int
}

type PolicyCommands interface {
	// UpdatePolicy replaces the singleton capacity policy. Reservations
	// already committed under the old limit are never touched; the new
	// limit applies to bookings from now on.
	UpdatePolicy(ctx context.Context, input UpdatePolicyInput) (*queries.PolicyView, error)
}

type policyCommandsImpl struct {
	uow      shared.UnitOfWork
	policies PolicyReads
	clock    clock.Clock
	logger   *slog.Logger
}

func NewPolicyCommands(uow shared.UnitOfWork, policies PolicyReads, clk clock.Clock, logger *slog.Logger) PolicyCommands {
	return &policyCommandsImpl{uow: uow, policies: policies, clock: clk, logger: logger}
}

func (c *policyCommandsImpl) UpdatePolicy(ctx context.Context, input UpdatePolicyInput) (*queries.PolicyView, error) {
	current, err := c.policies.Get(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := c.clock.Now()
	pol, err := policy.NewCapacityPolicy(input.MaxPerDay, input.NotifyLeadHours, current.ServiceStart, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidPolicy)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Policies().Save(ctx, tx.DB(), pol)
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// Drop the cached copy so the next booking sees the new limit.
	c.policies.Invalidate()

	c.logger.Info("capacity policy updated",
		slog.Int("max_per_day", input.MaxPerDay),
		slog.Int("notify_lead_hours", input.NotifyLeadHours))

	return &queries.PolicyView{
		MaxPerDay:       pol.MaxPerDay(),
		NotifyLeadHours: pol.NotifyLeadHours(),
		ServiceStart:    pol.ServiceStart(),
		UpdatedAt:       pol.UpdatedAt(),
	}, nil
}
