package commands

import (
	"context"
	"errors"
	"log/slog"

	"volunteer-slots/internal/domain/reservation"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/pkg/clock"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/usecase/queries"
	"volunteer-slots/internal/usecase/shared"

	"github.com/google/uuid"
)

// Decision is the administrator's verdict on a pending reservation.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionCancel  Decision = "cancel"
)

func (d Decision) IsValid() bool {
	return d == DecisionConfirm || d == DecisionCancel
}

// DecisionResult reports the reservation after the decision plus the fate
// of the volunteer-facing email. A failed email never fails the decision;
// the state change is already committed when the send starts.
type DecisionResult struct {
	Reservation *queries.ReservationView
	EmailSent   bool
	MessageID   string
}

type BookingCommands interface {
	// CreateReservation books a slot for the volunteer on the given date.
	// The capacity check and the insert run in one serialized transaction,
	// so concurrent requests for the last slot cannot both succeed.
	CreateReservation(ctx context.Context, volunteerID uuid.UUID, date reservation.ServiceDate) (*queries.ReservationView, error)
	// Decide confirms or cancels a reservation and emails the volunteer.
	Decide(ctx context.Context, reservationID uuid.UUID, decision Decision) (*DecisionResult, error)
}

type bookingCommandsImpl struct {
	uow        shared.UnitOfWork
	policies   PolicyReads
	views      ReservationReads
	dispatcher Dispatcher
	delivery   DeliveryCommands
	clock      clock.Clock
	adminEmail string
	logger     *slog.Logger
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	policies PolicyReads,
	views ReservationReads,
	dispatcher Dispatcher,
	delivery DeliveryCommands,
	clk clock.Clock,
	adminEmail string,
	logger *slog.Logger,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:        uow,
		policies:   policies,
		views:      views,
		dispatcher: dispatcher,
		delivery:   delivery,
		clock:      clk,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

func (c *bookingCommandsImpl) CreateReservation(ctx context.Context, volunteerID uuid.UUID, date reservation.ServiceDate) (*queries.ReservationView, error) {
	vol, err := c.uow.CommandReads().VolunteerByID(ctx, volunteerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrVolunteerNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !vol.Status.IsActive() {
		return nil, errs.Mark(errs.New("volunteer is deactivated"), errs.ErrVolunteerInactive)
	}

	pol, err := c.policies.Get(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	res, err := reservation.NewReservation(
		&reservation.Services{Clock: c.clock},
		reservation.PolicySpec{MaxPerDay: pol.MaxPerDay, ServiceStart: pol.ServiceStart},
		volunteerID,
		date,
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidDate)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Reserve(ctx, tx.DB(), res, pol.MaxPerDay)
		return err
	})
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindCapacityExceeded):
			return nil, errs.Mark(err, errs.ErrCapacityExceeded)
		case infra.IsKind(err, infra.KindDuplicateKey):
			return nil, errs.Mark(err, errs.ErrDuplicateBooking)
		default:
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	view, err := c.views.FindByID(ctx, res.ID())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// The admin notice rides the background pipeline; the booking is
	// committed whether or not the queue accepts it.
	if !c.dispatcher.Enqueue(newReservationMessage(c.adminEmail, view)) {
		c.logger.Warn("dispatch queue full, admin notice dropped",
			slog.String("reservation_id", view.ID.String()))
	}

	return view, nil
}

func (c *bookingCommandsImpl) Decide(ctx context.Context, reservationID uuid.UUID, decision Decision) (*DecisionResult, error) {
	if !decision.IsValid() {
		return nil, errs.Mark(errs.New("unknown decision "+string(decision)), errs.ErrDomainValidation)
	}

	var changed bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().ReservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		res := reservation.ReconstructReservation(
			snap.ID, snap.VolunteerID, snap.Date, snap.Status, snap.CreatedAt, snap.ConfirmedAt,
		)

		switch decision {
		case DecisionConfirm:
			now := c.clock.Now()
			if err := res.Confirm(now); err != nil {
				return errs.Mark(err, errs.ErrInvalidTransition)
			}
			applied, err := tx.Reservations().Confirm(ctx, tx.DB(), reservationID, now)
			if err != nil {
				return err
			}
			if !applied {
				// Raced with another decision inside this window.
				return errs.Mark(errs.New("reservation no longer pending"), errs.ErrInvalidTransition)
			}
			changed = true
		case DecisionCancel:
			if !res.Cancel() {
				// Cancelling an already-cancelled reservation is an
				// accepted no-op; the slot was released the first time.
				changed = false
				return nil
			}
			released, err := tx.Reservations().Release(ctx, tx.DB(), reservationID)
			if err != nil {
				return err
			}
			changed = released
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidTransition):
			return nil, err
		case infra.IsKind(err, infra.KindNotFound):
			return nil, errs.Mark(err, errs.ErrReservationNotFound)
		default:
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	view, err := c.views.FindByID(ctx, reservationID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	result := &DecisionResult{Reservation: view}
	if !changed {
		return result, nil
	}

	// Synchronous send: the caller learns in-band whether the volunteer
	// was actually told about the decision.
	var req = confirmationMessage(view.VolunteerEmail, view)
	if decision == DecisionCancel {
		req = cancellationMessage(view.VolunteerEmail, view)
	}
	sendRes, sendErr := c.delivery.Send(ctx, req)
	if sendErr != nil {
		c.logger.Warn("decision email failed",
			slog.String("reservation_id", reservationID.String()),
			slog.String("decision", string(decision)),
			slog.Any("error", sendErr))
		return result, nil
	}
	result.EmailSent = sendRes.Delivered()
	result.MessageID = sendRes.MessageID
	return result, nil
}
