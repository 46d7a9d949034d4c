package repository

import (
	"context"
	"time"

	"reservations-api/internal/infra"
	"reservations-api/internal/infra/db"
	"reservations-api/internal/pkg/pgconv"
	"reservations-api/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	// An unexpired row makes the upsert a no-op and RETURNING yields nothing.
	// Concurrent claims on the same key block on the primary key until the
	// first transaction finishes.
	claimIdempotencyKeySQL = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'processing', $5, $6, $6)
ON CONFLICT (key, user_id) DO UPDATE
SET endpoint = EXCLUDED.endpoint,
    request_hash = EXCLUDED.request_hash,
    status = 'processing',
    result_reservation_id = NULL,
    expires_at = EXCLUDED.expires_at,
    created_at = EXCLUDED.created_at,
    updated_at = EXCLUDED.updated_at
WHERE idempotency_keys.expires_at <= EXCLUDED.created_at
RETURNING true`

	getIdempotencyKeySQL = `
SELECT request_hash, status, result_reservation_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

	completeIdempotencyKeySQL = `
UPDATE idempotency_keys
SET status = 'completed', result_reservation_id = $3, updated_at = $4
WHERE key = $1 AND user_id = $2`
)

type IdempotencyRepository struct {
	dbtx db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{dbtx: dbtx}
}

func (r *IdempotencyRepository) Claim(ctx context.Context, claim shared.IdempotencyClaim) (*shared.IdempotencyRecord, bool, error) {
	var claimed bool
	err := r.dbtx.QueryRow(ctx, claimIdempotencyKeySQL,
		pgconv.UUIDToPgtype(claim.Key),
		claim.UserID,
		claim.Endpoint,
		claim.RequestHash,
		pgconv.TimeToPgtype(claim.ExpiresAt),
		pgconv.TimeToPgtype(claim.Now),
	).Scan(&claimed)
	if err == nil {
		return &shared.IdempotencyRecord{
			Key:         claim.Key,
			UserID:      claim.UserID,
			RequestHash: claim.RequestHash,
			Status:      shared.IdempotencyStatusProcessing,
			ExpiresAt:   claim.ExpiresAt,
		}, true, nil
	}
	if !pgconv.IsNoRows(err) {
		return nil, false, infra.WrapRepoErr("failed to claim idempotency key", err)
	}

	record, err := r.get(ctx, claim.Key, claim.UserID)
	if err != nil {
		return nil, false, err
	}
	return record, false, nil
}

func (r *IdempotencyRepository) get(ctx context.Context, key uuid.UUID, userID int64) (*shared.IdempotencyRecord, error) {
	var (
		requestHash string
		status      string
		resultID    pgtype.Int8
		expiresAt   pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, getIdempotencyKeySQL, pgconv.UUIDToPgtype(key), userID).
		Scan(&requestHash, &status, &resultID, &expiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	return &shared.IdempotencyRecord{
		Key:                 key,
		UserID:              userID,
		RequestHash:         requestHash,
		Status:              status,
		ResultReservationID: pgconv.Int64PtrFromPgtype(resultID),
		ExpiresAt:           pgconv.TimeFromPgtype(expiresAt),
	}, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key uuid.UUID, userID, reservationID int64, at time.Time) error {
	tag, err := r.dbtx.Exec(ctx, completeIdempotencyKeySQL, pgconv.UUIDToPgtype(key), userID, reservationID, pgconv.TimeToPgtype(at))
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return nil
}
