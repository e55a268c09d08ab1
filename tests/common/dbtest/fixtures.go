//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestVolunteer(t *testing.T, db DBLike, email, name string) uuid.UUID {
	t.Helper()

	volunteerID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO volunteers (id, email, name, status) VALUES ($1, $2, $3, 'active') ON CONFLICT (email) DO NOTHING",
		volunteerID, email, name)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM volunteers WHERE email = $1", email).Scan(&volunteerID)
	}

	return volunteerID
}

func DeactivateVolunteer(t *testing.T, db DBLike, id uuid.UUID) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"UPDATE volunteers SET status = 'inactive', updated_at = now() WHERE id = $1", id)
	require.NoError(t, err)
}

// SetPolicy writes the capacity policy singleton directly. Tests that need
// the read-through cache invalidated should go through the admin API instead.
func SetPolicy(t *testing.T, db DBLike, maxPerDay, notifyLeadHours int) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO capacity_policies (singleton, max_per_day, notify_lead_hours, service_start, updated_at)
		VALUES (TRUE, $1, $2, '2026-01-01T00:00:00Z', now())
		ON CONFLICT (singleton) DO UPDATE
		SET max_per_day = EXCLUDED.max_per_day,
		    notify_lead_hours = EXCLUDED.notify_lead_hours,
		    updated_at = now()`,
		maxPerDay, notifyLeadHours)
	require.NoError(t, err)
}

func CountDeliveryAttempts(t *testing.T, db DBLike, recipient, attemptType string) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM delivery_attempts WHERE recipient = $1 AND type = $2",
		recipient, attemptType).Scan(&count)
	require.NoError(t, err)
	return count
}

// BackdateDeliveryAttempts pushes matching audit rows into the past so a
// test can cross the deduplication window without waiting it out.
func BackdateDeliveryAttempts(t *testing.T, db DBLike, recipient, attemptType string, by time.Duration) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"UPDATE delivery_attempts SET created_at = created_at - make_interval(secs => $3) WHERE recipient = $1 AND type = $2",
		recipient, attemptType, by.Seconds())
	require.NoError(t, err)
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO capacity_policies (singleton, max_per_day, notify_lead_hours, service_start)
		VALUES (TRUE, 6, 24, '2026-01-01T00:00:00Z')
		ON CONFLICT (singleton) DO NOTHING;
	`)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
