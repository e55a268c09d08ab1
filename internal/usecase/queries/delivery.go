package queries

import (
	"context"

	"volunteer-slots/internal/pkg/errs"
)

const defaultDeliveryListLimit = 50

type DeliveryQueries interface {
	// ListRecent returns the newest delivery attempts for the admin audit
	// view, terminal and in-flight alike.
	ListRecent(ctx context.Context, limit int) ([]*DeliveryAttemptView, error)
}

type DeliveryViewRepo interface {
	ListRecent(ctx context.Context, limit int32) ([]*DeliveryAttemptView, error)
}

type deliveryQueriesImpl struct {
	repo DeliveryViewRepo
}

func NewDeliveryQueries(repo DeliveryViewRepo) DeliveryQueries {
	return &deliveryQueriesImpl{repo: repo}
}

func (q *deliveryQueriesImpl) ListRecent(ctx context.Context, limit int) ([]*DeliveryAttemptView, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultDeliveryListLimit
	}
	views, err := q.repo.ListRecent(ctx, int32(limit))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}
