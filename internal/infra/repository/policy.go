package repository

import (
	"context"

	"volunteer-slots/internal/domain/policy"
	"volunteer-slots/internal/infra"
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/pkg/pgconv"
)

type PolicyRepository struct {
	db db.DBTX
}

func NewPolicyRepository(dbtx db.DBTX) *PolicyRepository {
	return &PolicyRepository{db: dbtx}
}

const upsertPolicyQuery = `
INSERT INTO capacity_policies (singleton, max_per_day, notify_lead_hours, service_start, updated_at)
VALUES (TRUE, $1, $2, $3, $4)
ON CONFLICT (singleton) DO UPDATE
SET max_per_day = EXCLUDED.max_per_day,
	notify_lead_hours = EXCLUDED.notify_lead_hours,
	service_start = EXCLUDED.service_start,
	updated_at = EXCLUDED.updated_at`

// Save writes the singleton capacity policy row.
func (r *PolicyRepository) Save(ctx context.Context, tx db.DBTX, pol *policy.CapacityPolicy) error {
	_, err := tx.Exec(ctx, upsertPolicyQuery,
		int32(pol.MaxPerDay()),
		int32(pol.NotifyLeadHours()),
		pgconv.TimeToPgtype(pol.ServiceStart()),
		pgconv.TimeToPgtype(pol.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save capacity policy", err)
	}
	return nil
}
