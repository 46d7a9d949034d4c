package readstore

import (
	"context"

	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/infra"
	"reservations-api/internal/infra/db"
	"reservations-api/internal/pkg/pgconv"
	"reservations-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

const getReservationByIDSQL = `
SELECT r.id, r.name, r.created_by, r.address, r.lat, r.lng, r.state, r.created_at, r.updated_at,
       u.name, u.email, u.role
FROM reservations r
JOIN users u ON u.id = r.created_by
WHERE r.id = $1`

type ReservationReadStore struct {
	dbtx db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{dbtx: dbtx}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id int64) (*queries.ReservationView, error) {
	var (
		v         queries.ReservationView
		state     string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := r.dbtx.QueryRow(ctx, getReservationByIDSQL, id).Scan(
		&v.ID, &v.Name, &v.CreatedBy, &v.Address, &v.Lat, &v.Lng, &state, &createdAt, &updatedAt,
		&v.Creator.Name, &v.Creator.Email, &v.Creator.Role,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	v.State = reservation.State(state)
	v.Creator.ID = v.CreatedBy
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &v, nil
}
