package queries

import (
	"context"

	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/pkg/errs"

	"github.com/google/uuid"
)

type VolunteerQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*VolunteerView, error)
	GetByEmail(ctx context.Context, email string) (*VolunteerView, error)
}

type VolunteerViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*VolunteerView, error)
	FindByEmail(ctx context.Context, email string) (*VolunteerView, error)
}

type volunteerQueriesImpl struct {
	repo VolunteerViewRepo
}

func NewVolunteerQueries(repo VolunteerViewRepo) VolunteerQueries {
	return &volunteerQueriesImpl{repo: repo}
}

func (q *volunteerQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*VolunteerView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrVolunteerNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (q *volunteerQueriesImpl) GetByEmail(ctx context.Context, email string) (*VolunteerView, error) {
	view, err := q.repo.FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrVolunteerNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}
