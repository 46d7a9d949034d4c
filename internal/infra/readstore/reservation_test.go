//go:build unit

package readstore_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/infra"
	"reservations-api/internal/infra/readstore"
	"reservations-api/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errDBConnectionLost = errors.New("database connection lost")

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(sql, args)
	return ret.Get(0).(pgconn.CommandTag), ret.Error(1)
}

func (m *mockDBTX) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	ret := m.Called(sql, args)
	rows, _ := ret.Get(0).(pgx.Rows)
	return rows, ret.Error(1)
}

func (m *mockDBTX) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return m.Called(sql, args).Get(0).(pgx.Row)
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

// =============================================================================
// FindByID Tests
// =============================================================================

func TestReservationReadStore_FindByID(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	updatedAt := createdAt.Add(time.Hour)

	testCases := []struct {
		name       string
		row        fakeRow
		expectKind infra.RepositoryErrorKind
	}{
		{
			name: "success: joins the creator",
			row: fakeRow{values: []any{
				int64(5), "Casa", int64(2), "Calle 1", 4.6, -74.1, "SCHEDULED",
				pgconv.TimeToPgtype(createdAt), pgconv.TimeToPgtype(updatedAt),
				"Luis", "luis@example.com", "COORDINATOR",
			}},
		},
		{
			name:       "error: reservation not found",
			row:        fakeRow{err: pgx.ErrNoRows},
			expectKind: infra.KindNotFound,
		},
		{
			name:       "error: database failure",
			row:        fakeRow{err: errDBConnectionLost},
			expectKind: infra.KindDBFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dbtx := &mockDBTX{}
			dbtx.On("QueryRow", mock.Anything, []any{int64(5)}).Return(tc.row)

			view, err := readstore.NewReservationReadStore(dbtx).FindByID(ctx, 5)

			if tc.expectKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tc.expectKind), "expected kind [%v] but got (%v)", tc.expectKind, err)
				assert.Nil(t, view)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(5), view.ID)
			assert.Equal(t, reservation.StateScheduled, view.State)
			assert.Equal(t, createdAt, view.CreatedAt)
			assert.Equal(t, updatedAt, view.UpdatedAt)
			assert.Equal(t, int64(2), view.Creator.ID)
			assert.Equal(t, "Luis", view.Creator.Name)
			assert.Equal(t, "COORDINATOR", view.Creator.Role)
			assert.Nil(t, view.DistanceKm)
			dbtx.AssertExpectations(t)
		})
	}
}

func TestUserReadStore_FindByID(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		row        fakeRow
		wantActive bool
		expectKind infra.RepositoryErrorKind
	}{
		{
			name:       "success - active user",
			row:        fakeRow{values: []any{int64(1), "Ana", "ana@example.com", "SELLER", true}},
			wantActive: true,
		},
		{
			name:       "success - inactive user (for validation)",
			row:        fakeRow{values: []any{int64(1), "Ana", "ana@example.com", "SELLER", false}},
			wantActive: false,
		},
		{
			name:       "user not found",
			row:        fakeRow{err: pgx.ErrNoRows},
			expectKind: infra.KindNotFound,
		},
		{
			name:       "database error",
			row:        fakeRow{err: errDBConnectionLost},
			expectKind: infra.KindDBFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dbtx := &mockDBTX{}
			dbtx.On("QueryRow", mock.Anything, []any{int64(1)}).Return(tc.row)

			u, err := readstore.NewUserReadStore(dbtx).FindByID(ctx, 1)

			if tc.expectKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tc.expectKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ana@example.com", u.Email)
			assert.Equal(t, "SELLER", u.Role)
			assert.Equal(t, tc.wantActive, u.IsActive)
		})
	}
}
