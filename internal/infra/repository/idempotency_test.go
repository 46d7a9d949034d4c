//go:build unit

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"reservations-api/internal/infra"
	"reservations-api/internal/infra/repository"
	"reservations-api/internal/pkg/pgconv"
	"reservations-api/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdempotencyKey = uuid.MustParse("3b7a2c1d-9e8f-4a6b-8c5d-2e1f0a9b8c7d")

func newClaim() shared.IdempotencyClaim {
	return shared.IdempotencyClaim{
		Key:         testIdempotencyKey,
		UserID:      7,
		Endpoint:    "POST /api/reservations",
		RequestHash: "abc123",
		Now:         testNow,
		ExpiresAt:   testNow.Add(24 * time.Hour),
	}
}

// =============================================================================
// Claim Tests
// =============================================================================

func TestIdempotencyRepository_Claim(t *testing.T) {
	ctx := context.Background()
	claimArgs := []any{
		pgconv.UUIDToPgtype(testIdempotencyKey), int64(7), "POST /api/reservations", "abc123",
		pgconv.TimeToPgtype(testNow.Add(24 * time.Hour)), pgconv.TimeToPgtype(testNow),
	}
	getArgs := []any{pgconv.UUIDToPgtype(testIdempotencyKey), int64(7)}

	t.Run("success: fresh key is claimed", func(t *testing.T) {
		dbtx := &mockDBTX{}
		dbtx.On("QueryRow", sqlContaining("ON CONFLICT (key, user_id) DO UPDATE"), claimArgs).Return(fakeRow{values: []any{true}})

		record, claimed, err := repository.NewIdempotencyRepository(dbtx).Claim(ctx, newClaim())
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Equal(t, shared.IdempotencyStatusProcessing, record.Status)
		assert.Equal(t, "abc123", record.RequestHash)
		assert.Nil(t, record.ResultReservationID)
		dbtx.AssertExpectations(t)
	})

	t.Run("success: held key returns the stored record", func(t *testing.T) {
		dbtx := &mockDBTX{}
		expiresAt := testNow.Add(time.Hour)
		dbtx.On("QueryRow", sqlContaining("ON CONFLICT (key, user_id) DO UPDATE"), claimArgs).Return(fakeRow{err: pgx.ErrNoRows})
		dbtx.On("QueryRow", sqlContaining("FROM idempotency_keys"), getArgs).Return(fakeRow{values: []any{
			"abc123", "completed", pgtype.Int8{Int64: 42, Valid: true}, pgconv.TimeToPgtype(expiresAt),
		}})

		record, claimed, err := repository.NewIdempotencyRepository(dbtx).Claim(ctx, newClaim())
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.Equal(t, shared.IdempotencyStatusCompleted, record.Status)
		require.NotNil(t, record.ResultReservationID)
		assert.Equal(t, int64(42), *record.ResultReservationID)
		assert.Equal(t, expiresAt, record.ExpiresAt)
		dbtx.AssertExpectations(t)
	})

	t.Run("error: unknown user", func(t *testing.T) {
		dbtx := &mockDBTX{}
		dbtx.On("QueryRow", sqlContaining("ON CONFLICT"), claimArgs).Return(fakeRow{err: &pgconn.PgError{Code: "23503"}})

		_, _, err := repository.NewIdempotencyRepository(dbtx).Claim(ctx, newClaim())
		assert.True(t, infra.IsKind(err, infra.KindForeignKeyViolated))
	})

	t.Run("error: stored record vanished", func(t *testing.T) {
		dbtx := &mockDBTX{}
		dbtx.On("QueryRow", sqlContaining("ON CONFLICT"), claimArgs).Return(fakeRow{err: pgx.ErrNoRows})
		dbtx.On("QueryRow", sqlContaining("FROM idempotency_keys"), getArgs).Return(fakeRow{err: pgx.ErrNoRows})

		_, _, err := repository.NewIdempotencyRepository(dbtx).Claim(ctx, newClaim())
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("error: database failure", func(t *testing.T) {
		dbtx := &mockDBTX{}
		dbtx.On("QueryRow", sqlContaining("ON CONFLICT"), claimArgs).Return(fakeRow{err: errors.New("connection reset")})

		_, _, err := repository.NewIdempotencyRepository(dbtx).Claim(ctx, newClaim())
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}

// =============================================================================
// Complete Tests
// =============================================================================

func TestIdempotencyRepository_Complete(t *testing.T) {
	ctx := context.Background()
	args := []any{pgconv.UUIDToPgtype(testIdempotencyKey), int64(7), int64(42), pgconv.TimeToPgtype(testNow)}

	testCases := []struct {
		name       string
		tag        pgconn.CommandTag
		execErr    error
		expectKind infra.RepositoryErrorKind
	}{
		{name: "success: result recorded", tag: pgconn.NewCommandTag("UPDATE 1")},
		{name: "error: key missing", tag: pgconn.NewCommandTag("UPDATE 0"), expectKind: infra.KindNotFound},
		{name: "error: database failure", execErr: errors.New("timeout"), expectKind: infra.KindDBFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dbtx := &mockDBTX{}
			dbtx.On("Exec", sqlContaining("SET status = 'completed'"), args).Return(tc.tag, tc.execErr)

			err := repository.NewIdempotencyRepository(dbtx).Complete(ctx, testIdempotencyKey, 7, 42, testNow)

			if tc.expectKind != "" {
				assert.True(t, infra.IsKind(err, tc.expectKind), "expected kind [%v] but got (%v)", tc.expectKind, err)
			} else {
				assert.NoError(t, err)
			}
			dbtx.AssertExpectations(t)
		})
	}
}
