package repository

import (
	"context"
	"time"

	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/infra"
	"reservations-api/internal/infra/db"
	"reservations-api/internal/infra/repository/converter"
	"reservations-api/internal/pkg/pgconv"
)

const (
	insertReservationSQL = `
INSERT INTO reservations (name, created_by, address, lat, lng, state, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	updateReservationFieldsSQL = `
UPDATE reservations
SET name = $3, address = $4, lat = $5, lng = $6, updated_at = $7
WHERE id = $1 AND state = $2`

	updateReservationStateSQL = `
UPDATE reservations
SET state = $3, updated_at = $4
WHERE id = $1 AND state = $2`

	reservationExistsSQL = `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`
)

type ReservationRepository struct {
	dbtx db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{dbtx: dbtx}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (int64, error) {
	params := converter.ReservationToCreateParams(res)

	var id int64
	if err := r.dbtx.QueryRow(ctx, insertReservationSQL, params.Args()...).Scan(&id); err != nil {
		return 0, infra.WrapRepoErr("failed to create reservation", err)
	}
	return id, nil
}

// UpdateFields persists name, address and coordinates only if the row is
// still in the state the entity was loaded with.
func (r *ReservationRepository) UpdateFields(ctx context.Context, res *reservation.Reservation) error {
	params := converter.ReservationToUpdateFieldsParams(res)

	tag, err := r.dbtx.Exec(ctx, updateReservationFieldsSQL, params.Args()...)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, res.ID())
	}
	return nil
}

// UpdateState is a compare-and-set on the state column: exactly one of any
// number of concurrent callers with the same expected state succeeds.
func (r *ReservationRepository) UpdateState(ctx context.Context, id int64, expected, target reservation.State, at time.Time) error {
	tag, err := r.dbtx.Exec(ctx, updateReservationStateSQL, id, expected.String(), target.String(), pgconv.TimeToPgtype(at))
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation state", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

func (r *ReservationRepository) missOrConflict(ctx context.Context, id int64) error {
	var exists bool
	if err := r.dbtx.QueryRow(ctx, reservationExistsSQL, id).Scan(&exists); err != nil {
		return infra.WrapRepoErr("failed to check reservation existence", err)
	}
	if !exists {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return infra.WrapRepoErr("reservation state changed concurrently", nil, infra.KindConflict)
}
