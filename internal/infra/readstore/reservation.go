package readstore

import (
	"context"
	"time"

	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"
	"volunteer-slots/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

const reservationViewQuery = `
SELECT r.id, r.volunteer_id, v.email, v.name, r.service_date, r.status, r.created_at, r.confirmed_at
FROM reservations r
JOIN volunteers v ON v.id = r.volunteer_id`

func (s *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row := s.db.QueryRow(ctx, reservationViewQuery+` WHERE r.id = $1`, pgconv.UUIDToPgtype(id))

	view, err := scanReservationView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}
	return view, nil
}

func (s *ReservationReadStore) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]*queries.ReservationView, error) {
	rows, err := s.db.Query(ctx, reservationViewQuery+` WHERE r.volunteer_id = $1 ORDER BY r.service_date DESC`,
		pgconv.UUIDToPgtype(volunteerID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations by volunteer", err)
	}
	defer rows.Close()

	return collectReservationViews(rows)
}

func (s *ReservationReadStore) ListByDate(ctx context.Context, date time.Time) ([]*queries.ReservationView, error) {
	rows, err := s.db.Query(ctx, reservationViewQuery+` WHERE r.service_date = $1 ORDER BY r.created_at`,
		pgconv.DateToPgtype(date))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations by date", err)
	}
	defer rows.Close()

	return collectReservationViews(rows)
}

const activeCountByDateQuery = `
SELECT COUNT(*) FROM reservations
WHERE service_date = $1 AND status <> 'cancelled'`

func (s *ReservationReadStore) ActiveCountByDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, activeCountByDateQuery, pgconv.DateToPgtype(date)).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count active reservations", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservationView(row rowScanner) (*queries.ReservationView, error) {
	var (
		view        queries.ReservationView
		id          pgtype.UUID
		volunteerID pgtype.UUID
		date        pgtype.Date
		createdAt   pgtype.Timestamptz
		confirmedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &volunteerID, &view.VolunteerEmail, &view.VolunteerName, &date, &view.Status, &createdAt, &confirmedAt)
	if err != nil {
		return nil, err
	}
	view.ID = uuid.UUID(id.Bytes)
	view.VolunteerID = uuid.UUID(volunteerID.Bytes)
	view.Date = pgconv.DateFromPgtype(date)
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	view.ConfirmedAt = pgconv.TimePtrFromPgtype(confirmedAt)
	return &view, nil
}

func collectReservationViews(rows pgx.Rows) ([]*queries.ReservationView, error) {
	var views []*queries.ReservationView
	for rows.Next() {
		view, err := scanReservationView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation row", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation rows", err)
	}
	return views, nil
}
