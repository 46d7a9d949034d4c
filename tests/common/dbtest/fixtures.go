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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestUser(t *testing.T, db DBLike, name, email, role string) int64 {
	t.Helper()

	var userID int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (name, email, role, is_active) VALUES ($1, $2, $3, true)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		name, email, role).Scan(&userID)
	require.NoError(t, err)
	return userID
}

func DeactivateUser(t *testing.T, db DBLike, userID int64) {
	t.Helper()
	_, err := db.Exec(context.Background(), "UPDATE users SET is_active = false WHERE id = $1", userID)
	require.NoError(t, err)
}

type ReservationFixture struct {
	Name      string
	Address   string
	Lat       float64
	Lng       float64
	State     string
	CreatedBy int64
	CreatedAt time.Time
}

// CreateTestReservation inserts directly, bypassing the state machine, so any
// starting state can be arranged.
func CreateTestReservation(t *testing.T, db DBLike, f ReservationFixture) int64 {
	t.Helper()

	if f.State == "" {
		f.State = "RESERVED"
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}

	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO reservations (name, created_by, address, lat, lng, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id`,
		f.Name, f.CreatedBy, f.Address, f.Lat, f.Lng, f.State, f.CreatedAt).Scan(&id)
	require.NoError(t, err)
	return id
}

func ReservationState(t *testing.T, db DBLike, id int64) string {
	t.Helper()
	var state string
	err := db.QueryRow(context.Background(), "SELECT state FROM reservations WHERE id = $1", id).Scan(&state)
	require.NoError(t, err)
	return state
}

func CountRows(t *testing.T, db DBLike, table string) int {
	t.Helper()
	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every table and restarts identities.
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
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
