package readstore

import (
	"context"

	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"
	"volunteer-slots/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type VolunteerReadStore struct {
	db db.DBTX
}

func NewVolunteerReadStore(dbtx db.DBTX) *VolunteerReadStore {
	return &VolunteerReadStore{db: dbtx}
}

const volunteerViewQuery = `
SELECT id, email, name, phone, status, created_at FROM volunteers`

func (s *VolunteerReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.VolunteerView, error) {
	row := s.db.QueryRow(ctx, volunteerViewQuery+` WHERE id = $1`, pgconv.UUIDToPgtype(id))
	return scanVolunteerView(row, "failed to find volunteer by ID")
}

func (s *VolunteerReadStore) FindByEmail(ctx context.Context, email string) (*queries.VolunteerView, error) {
	row := s.db.QueryRow(ctx, volunteerViewQuery+` WHERE email = $1`, email)
	return scanVolunteerView(row, "failed to find volunteer by email")
}

func scanVolunteerView(row rowScanner, failMsg string) (*queries.VolunteerView, error) {
	var (
		view      queries.VolunteerView
		id        pgtype.UUID
		phone     pgtype.Text
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &view.Email, &view.Name, &phone, &view.Status, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("volunteer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr(failMsg, err)
	}
	view.ID = uuid.UUID(id.Bytes)
	if phone.Valid {
		view.Phone = phone.String
	}
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &view, nil
}
