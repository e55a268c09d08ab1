package commands

import (
	"context"
	"log/slog"

	"volunteer-slots/internal/domain/volunteer"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/usecase/queries"
	"volunteer-slots/internal/usecase/shared"

	"github.com/google/uuid"
)

type RegisterVolunteerInput struct {
	Email string
	Name  string
	Phone string
}

type UpdateVolunteerInput struct {
	Name  string
	Phone string
}

// VolunteerReads is the read side used to return views after a write.
type VolunteerReads interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.VolunteerView, error)
}

type VolunteerCommands interface {
	Register(ctx context.Context, input RegisterVolunteerInput) (*queries.VolunteerView, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateVolunteerInput) (*queries.VolunteerView, error)
	// Deactivate retires a volunteer without deleting history. Existing
	// reservations stay as they are; new bookings are refused.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type volunteerCommandsImpl struct {
	uow    shared.UnitOfWork
	views  VolunteerReads
	clock  clock.Clock
	logger *slog.Logger
}

func NewVolunteerCommands(uow shared.UnitOfWork, views VolunteerReads, clk clock.Clock, logger *slog.Logger) VolunteerCommands {
	return &volunteerCommandsImpl{uow: uow, views: views, clock: clk, logger: logger}
}

func (c *volunteerCommandsImpl) Register(ctx context.Context, input RegisterVolunteerInput) (*queries.VolunteerView, error) {
	email, err := volunteer.NewEmail(input.Email)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	name, err := volunteer.NewName(input.Name)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	vol := volunteer.NewVolunteer(email, name, input.Phone, c.clock.Now())

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Volunteers().Create(ctx, tx.DB(), vol)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, errs.ErrDuplicateVolunteer)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	c.logger.Info("volunteer registered", slog.String("volunteer_id", vol.ID().String()))
	return c.views.FindByID(ctx, vol.ID())
}

func (c *volunteerCommandsImpl) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateVolunteerInput) (*queries.VolunteerView, error) {
	name, err := volunteer.NewName(input.Name)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		vol, err := c.loadVolunteer(ctx, tx, id)
		if err != nil {
			return err
		}
		vol.UpdateProfile(name, input.Phone, c.clock.Now())
		return tx.Volunteers().Update(ctx, tx.DB(), vol)
	})
	if err != nil {
		return nil, c.mapVolunteerErr(err)
	}

	return c.views.FindByID(ctx, id)
}

func (c *volunteerCommandsImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		vol, err := c.loadVolunteer(ctx, tx, id)
		if err != nil {
			return err
		}
		vol.Deactivate(c.clock.Now())
		return tx.Volunteers().Update(ctx, tx.DB(), vol)
	})
	if err != nil {
		return c.mapVolunteerErr(err)
	}

	c.logger.Info("volunteer deactivated", slog.String("volunteer_id", id.String()))
	return nil
}

// loadVolunteer reconstructs the aggregate from the command-side snapshot
// inside the current transaction.
func (c *volunteerCommandsImpl) loadVolunteer(ctx context.Context, tx shared.Tx, id uuid.UUID) (*volunteer.Volunteer, error) {
	snap, err := tx.Reads().VolunteerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	email, err := volunteer.NewEmail(snap.Email)
	if err != nil {
		return nil, err
	}
	name, err := volunteer.NewName(snap.Name)
	if err != nil {
		return nil, err
	}
	return volunteer.ReconstructVolunteer(
		snap.ID, email, name, snap.Phone, snap.Status, snap.CreatedAt, c.clock.Now(),
	), nil
}

func (c *volunteerCommandsImpl) mapVolunteerErr(err error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, errs.ErrVolunteerNotFound)
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}
