package repository

import (
	"context"
	"errors"
	"time"

	"volunteer-slots/internal/domain/reservation"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

// ReservationRepository is the write side of the slot ledger. Reserve is
// the single contended operation: it serializes concurrent reservers of the
// same date with a per-date advisory transaction lock before checking the
// capacity count, so two callers can never both observe count = capacity-1
// and both insert.
type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

const reserveLockQuery = `SELECT pg_advisory_xact_lock(hashtext('reservations:' || $1::text))`

const activeCountQuery = `
SELECT COUNT(*) FROM reservations
WHERE service_date = $1 AND status <> 'cancelled'`

const insertReservationQuery = `
INSERT INTO reservations (id, volunteer_id, service_date, status, created_at, confirmed_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Reserve inserts res only while the date's active count is below
// maxPerDay. Must run inside a transaction: the advisory lock is scoped to
// the enclosing transaction and releases on commit or rollback.
func (r *ReservationRepository) Reserve(ctx context.Context, tx db.DBTX, res *reservation.Reservation, maxPerDay int) (uuid.UUID, error) {
	dateKey := res.Date().String()

	if _, err := tx.Exec(ctx, reserveLockQuery, dateKey); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to take date reservation lock", err)
	}

	var active int
	if err := tx.QueryRow(ctx, activeCountQuery, pgconv.DateToPgtype(res.Date().Time())).Scan(&active); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to count active reservations", err)
	}
	if active >= maxPerDay {
		return uuid.Nil, infra.WrapRepoErr("date is fully booked", nil, infra.KindCapacityExceeded)
	}

	_, err := tx.Exec(ctx, insertReservationQuery,
		pgconv.UUIDToPgtype(res.ID()),
		pgconv.UUIDToPgtype(res.VolunteerID()),
		pgconv.DateToPgtype(res.Date().Time()),
		res.Status().String(),
		pgconv.TimeToPgtype(res.CreatedAt()),
		pgconv.TimePtrToPgtype(res.ConfirmedAt()),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			// Partial unique index on (volunteer_id, service_date) for
			// non-cancelled rows: concurrent duplicate submissions get
			// exactly one success and one duplicate error.
			return uuid.Nil, infra.WrapRepoErr("volunteer already booked on date", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to insert reservation", err)
	}

	return res.ID(), nil
}

const releaseQuery = `
UPDATE reservations SET status = 'cancelled'
WHERE id = $1 AND status <> 'cancelled'`

const reservationExistsQuery = `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`

// Release cancels a reservation, freeing its slot. Releasing an
// already-cancelled reservation reports released=false without error, so a
// repeated cancel never double-frees capacity.
func (r *ReservationRepository) Release(ctx context.Context, tx db.DBTX, id uuid.UUID) (released bool, err error) {
	tag, err := tx.Exec(ctx, releaseQuery, pgconv.UUIDToPgtype(id))
	if err != nil {
		return false, infra.WrapRepoErr("failed to release reservation", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := tx.QueryRow(ctx, reservationExistsQuery, pgconv.UUIDToPgtype(id)).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check reservation existence", err)
	}
	if !exists {
		return false, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return false, nil
}

const confirmQuery = `
UPDATE reservations SET status = 'confirmed', confirmed_at = $2
WHERE id = $1 AND status = 'pending'`

// Confirm stamps confirmedAt and reports whether the row actually moved
// out of pending.
func (r *ReservationRepository) Confirm(ctx context.Context, tx db.DBTX, id uuid.UUID, confirmedAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, confirmQuery, pgconv.UUIDToPgtype(id), pgconv.TimeToPgtype(confirmedAt))
	if err != nil {
		return false, infra.WrapRepoErr("failed to confirm reservation", err)
	}
	return tag.RowsAffected() > 0, nil
}
