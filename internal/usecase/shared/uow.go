package shared

import (
	"context"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/domain/policy"
	"volunteer-slots/internal/domain/reservation"
	"volunteer-slots/internal/domain/volunteer"
	"volunteer-slots/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry on
	// serialization failures. The slot ledger's capacity check runs here.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Reservations() ReservationRepository
	Deliveries() DeliveryRepository
	Policies() PolicyRepository
	Volunteers() VolunteerRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	ReservationByID(ctx context.Context, id uuid.UUID) (*ReservationSnapshot, error)
	VolunteerByID(ctx context.Context, id uuid.UUID) (*VolunteerSnapshot, error)
	Policy(ctx context.Context) (*PolicySnapshot, error)
}

// Minimal snapshots for command-side validation (CQRS separation)
type ReservationSnapshot struct {
	ID          uuid.UUID
	VolunteerID uuid.UUID
	Date        reservation.ServiceDate
	Status      reservation.Status
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

type VolunteerSnapshot struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Phone     string
	Status    volunteer.Status
	CreatedAt time.Time
}

type PolicySnapshot struct {
	MaxPerDay       int
	NotifyLeadHours int
	ServiceStart    time.Time
}

type ReservationRepository interface {
	Reserve(ctx context.Context, tx db.DBTX, res *reservation.Reservation, maxPerDay int) (uuid.UUID, error)
	Release(ctx context.Context, tx db.DBTX, id uuid.UUID) (released bool, err error)
	Confirm(ctx context.Context, tx db.DBTX, id uuid.UUID, confirmedAt time.Time) (bool, error)
}

type DeliveryRepository interface {
	Append(ctx context.Context, tx db.DBTX, attempt *notification.DeliveryAttempt) (uuid.UUID, error)
	Update(ctx context.Context, tx db.DBTX, attempt *notification.DeliveryAttempt) error
}

type PolicyRepository interface {
	Save(ctx context.Context, tx db.DBTX, pol *policy.CapacityPolicy) error
}

type VolunteerRepository interface {
	Create(ctx context.Context, tx db.DBTX, v *volunteer.Volunteer) error
	Update(ctx context.Context, tx db.DBTX, v *volunteer.Volunteer) error
}
