package reservation

import (
	"errors"
	"time"

	"volunteer-slots/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrNotPending       = errors.New("reservation is not pending")
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrInvalidStatus    = errors.New("invalid reservation status")
)

type Services struct {
	Clock clock.Clock
}

// PolicySpec is the slice of the capacity policy a new reservation needs.
type PolicySpec struct {
	MaxPerDay    int
	ServiceStart time.Time
}

type Reservation struct {
	id          uuid.UUID
	volunteerID uuid.UUID
	date        ServiceDate
	status      Status
	createdAt   time.Time
	confirmedAt *time.Time
}

func NewReservation(services *Services, pol PolicySpec, volunteerID uuid.UUID, date ServiceDate) (*Reservation, error) {
	now := services.Clock.Now()
	if err := date.ValidateBookable(now, pol.ServiceStart); err != nil {
		return nil, err
	}

	return &Reservation{
		id:          uuid.New(),
		volunteerID: volunteerID,
		date:        date,
		status:      StatusPending,
		createdAt:   now,
	}, nil
}

func ReconstructReservation(
	id, volunteerID uuid.UUID,
	date ServiceDate,
	status Status,
	createdAt time.Time,
	confirmedAt *time.Time,
) *Reservation {
	return &Reservation{
		id:          id,
		volunteerID: volunteerID,
		date:        date,
		status:      status,
		createdAt:   createdAt,
		confirmedAt: confirmedAt,
	}
}

// Confirm moves a pending reservation to confirmed and stamps confirmedAt.
func (r *Reservation) Confirm(now time.Time) error {
	if !r.status.CanTransitionTo(StatusConfirmed) {
		return ErrNotPending
	}
	r.status = StatusConfirmed
	r.confirmedAt = &now
	return nil
}

// Cancel moves a reservation to cancelled. Cancelling an already-cancelled
// reservation is an accepted no-op; the return value reports whether this
// call actually released a slot, so cancellation never double-frees capacity.
func (r *Reservation) Cancel() (released bool) {
	if r.status == StatusCancelled {
		return false
	}
	r.status = StatusCancelled
	return true
}

func (r *Reservation) IsActive() bool {
	return r.status.IsActive()
}

func (r *Reservation) IsCancelled() bool {
	return r.status == StatusCancelled
}

func (r *Reservation) ID() uuid.UUID          { return r.id }
func (r *Reservation) VolunteerID() uuid.UUID { return r.volunteerID }
func (r *Reservation) Date() ServiceDate      { return r.date }
func (r *Reservation) Status() Status         { return r.status }
func (r *Reservation) CreatedAt() time.Time   { return r.createdAt }
func (r *Reservation) ConfirmedAt() *time.Time {
	return r.confirmedAt
}
