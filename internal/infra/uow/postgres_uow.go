package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"volunteer-slots/internal/domain/reservation"
	"volunteer-slots/internal/domain/volunteer"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/infra/repository"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/pkg/pgconv"
	"volunteer-slots/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes;
// the slot ledger's per-date advisory lock supplies the extra
// serialization the capacity check needs.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// Mask the high bit to ensure a positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	reservationRepo shared.ReservationRepository
	deliveryRepo    shared.DeliveryRepository
	policyRepo      shared.PolicyRepository
	volunteerRepo   shared.VolunteerRepository
	commandReads    shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx)
	}
	return t.reservationRepo
}

func (t *pgTx) Deliveries() shared.DeliveryRepository {
	if t.deliveryRepo == nil {
		t.deliveryRepo = repository.NewDeliveryRepository(t.dbtx)
	}
	return t.deliveryRepo
}

func (t *pgTx) Policies() shared.PolicyRepository {
	if t.policyRepo == nil {
		t.policyRepo = repository.NewPolicyRepository(t.dbtx)
	}
	return t.policyRepo
}

func (t *pgTx) Volunteers() shared.VolunteerRepository {
	if t.volunteerRepo == nil {
		t.volunteerRepo = repository.NewVolunteerRepository(t.dbtx)
	}
	return t.volunteerRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX
}

const reservationSnapshotQuery = `
SELECT id, volunteer_id, service_date, status, created_at, confirmed_at
FROM reservations WHERE id = $1`

func (r *commandReads) ReservationByID(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	var (
		rowID       pgtype.UUID
		volunteerID pgtype.UUID
		date        pgtype.Date
		status      string
		createdAt   pgtype.Timestamptz
		confirmedAt pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, reservationSnapshotQuery, pgconv.UUIDToPgtype(id)).
		Scan(&rowID, &volunteerID, &date, &status, &createdAt, &confirmedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read reservation snapshot", err)
	}

	serviceDate, err := reservation.NewServiceDate(pgconv.DateFromPgtype(date))
	if err != nil {
		return nil, infra.WrapRepoErr("stored reservation has invalid date", err)
	}

	return &shared.ReservationSnapshot{
		ID:          uuid.UUID(rowID.Bytes),
		VolunteerID: uuid.UUID(volunteerID.Bytes),
		Date:        serviceDate,
		Status:      reservation.Status(status),
		CreatedAt:   pgconv.TimeFromPgtype(createdAt),
		ConfirmedAt: pgconv.TimePtrFromPgtype(confirmedAt),
	}, nil
}

const volunteerSnapshotQuery = `
SELECT id, email, name, phone, status, created_at FROM volunteers WHERE id = $1`

func (r *commandReads) VolunteerByID(ctx context.Context, id uuid.UUID) (*shared.VolunteerSnapshot, error) {
	var (
		rowID     pgtype.UUID
		email     string
		name      string
		phone     string
		status    string
		createdAt pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, volunteerSnapshotQuery, pgconv.UUIDToPgtype(id)).
		Scan(&rowID, &email, &name, &phone, &status, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("volunteer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read volunteer snapshot", err)
	}

	return &shared.VolunteerSnapshot{
		ID:        uuid.UUID(rowID.Bytes),
		Email:     email,
		Name:      name,
		Phone:     phone,
		Status:    volunteer.Status(status),
		CreatedAt: createdAt.Time,
	}, nil
}

const policySnapshotQuery = `
SELECT max_per_day, notify_lead_hours, service_start
FROM capacity_policies WHERE singleton`

func (r *commandReads) Policy(ctx context.Context) (*shared.PolicySnapshot, error) {
	var (
		maxPerDay       int32
		notifyLeadHours int32
		serviceStart    pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, policySnapshotQuery).Scan(&maxPerDay, &notifyLeadHours, &serviceStart)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("capacity policy not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read capacity policy snapshot", err)
	}

	return &shared.PolicySnapshot{
		MaxPerDay:       int(maxPerDay),
		NotifyLeadHours: int(notifyLeadHours),
		ServiceStart:    pgconv.TimeFromPgtype(serviceStart),
	}, nil
}
