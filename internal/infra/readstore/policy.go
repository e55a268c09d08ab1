package readstore

import (
	"context"
	"sync"
	"time"

	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"
	"volunteer-slots/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

// PolicyReadStore serves the capacity policy singleton. The policy gates
// every reserve, so reads go through a short-TTL cache; Invalidate is
// called after admin updates so the new limit applies promptly on this
// instance. Other instances converge within the TTL.
type PolicyReadStore struct {
	db  db.DBTX
	ttl time.Duration

	mu        sync.RWMutex
	cached    *queries.PolicyView
	fetchedAt time.Time
}

func NewPolicyReadStore(dbtx db.DBTX, ttl time.Duration) *PolicyReadStore {
	return &PolicyReadStore{db: dbtx, ttl: ttl}
}

const policyQuery = `
SELECT max_per_day, notify_lead_hours, service_start, updated_at
FROM capacity_policies WHERE singleton`

func (s *PolicyReadStore) Get(ctx context.Context) (*queries.PolicyView, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		view := *s.cached
		s.mu.RUnlock()
		return &view, nil
	}
	s.mu.RUnlock()

	view, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = view
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	copied := *view
	return &copied, nil
}

func (s *PolicyReadStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *PolicyReadStore) fetch(ctx context.Context) (*queries.PolicyView, error) {
	var (
		maxPerDay       int32
		notifyLeadHours int32
		serviceStart    pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, policyQuery).Scan(&maxPerDay, &notifyLeadHours, &serviceStart, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("capacity policy not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load capacity policy", err)
	}

	return &queries.PolicyView{
		MaxPerDay:       int(maxPerDay),
		NotifyLeadHours: int(notifyLeadHours),
		ServiceStart:    pgconv.TimeFromPgtype(serviceStart),
		UpdatedAt:       pgconv.TimeFromPgtype(updatedAt),
	}, nil
}
