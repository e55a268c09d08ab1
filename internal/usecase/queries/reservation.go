package queries

import (
	"context"
	"time"

	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]*ReservationView, error)
	ListByDate(ctx context.Context, date time.Time) ([]*ReservationView, error)
}

type ReservationViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]*ReservationView, error)
	ListByDate(ctx context.Context, date time.Time) ([]*ReservationView, error)
	ActiveCountByDate(ctx context.Context, date time.Time) (int, error)
}

type reservationQueriesImpl struct {
	repo ReservationViewRepo
}

func NewReservationQueries(repo ReservationViewRepo) ReservationQueries {
	return &reservationQueriesImpl{repo: repo}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrReservationNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]*ReservationView, error) {
	views, err := q.repo.ListByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}

func (q *reservationQueriesImpl) ListByDate(ctx context.Context, date time.Time) ([]*ReservationView, error) {
	views, err := q.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}
