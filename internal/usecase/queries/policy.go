package queries

import (
	"context"

	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/pkg/errs"
)

type PolicyQueries interface {
	Get(ctx context.Context) (*PolicyView, error)
}

type PolicyViewRepo interface {
	Get(ctx context.Context) (*PolicyView, error)
}

type policyQueriesImpl struct {
	repo PolicyViewRepo
}

func NewPolicyQueries(repo PolicyViewRepo) PolicyQueries {
	return &policyQueriesImpl{repo: repo}
}

func (q *policyQueriesImpl) Get(ctx context.Context) (*PolicyView, error) {
	view, err := q.repo.Get(ctx)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrPolicyNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}
