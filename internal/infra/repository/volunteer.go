package repository

import (
	"context"
	"errors"

	"volunteer-slots/internal/domain/volunteer"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgconn"
)

type VolunteerRepository struct {
	db db.DBTX
}

func NewVolunteerRepository(dbtx db.DBTX) *VolunteerRepository {
	return &VolunteerRepository{db: dbtx}
}

const insertVolunteerQuery = `
INSERT INTO volunteers (id, email, name, phone, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *VolunteerRepository) Create(ctx context.Context, tx db.DBTX, v *volunteer.Volunteer) error {
	_, err := tx.Exec(ctx, insertVolunteerQuery,
		pgconv.UUIDToPgtype(v.ID()),
		v.Email().String(),
		v.Name().String(),
		v.Phone(),
		v.Status().String(),
		pgconv.TimeToPgtype(v.CreatedAt()),
		pgconv.TimeToPgtype(v.UpdatedAt()),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create volunteer", err)
	}
	return nil
}

const updateVolunteerQuery = `
UPDATE volunteers SET name = $2, phone = $3, status = $4, updated_at = $5
WHERE id = $1`

func (r *VolunteerRepository) Update(ctx context.Context, tx db.DBTX, v *volunteer.Volunteer) error {
	tag, err := tx.Exec(ctx, updateVolunteerQuery,
		pgconv.UUIDToPgtype(v.ID()),
		v.Name().String(),
		v.Phone(),
		v.Status().String(),
		pgconv.TimeToPgtype(v.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update volunteer", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("volunteer not found", nil, infra.KindNotFound)
	}
	return nil
}
