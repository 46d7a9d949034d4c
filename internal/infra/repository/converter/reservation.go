package converter

import (
	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type CreateReservationParams struct {
	Name      string
	CreatedBy int64
	Address   string
	Lat       float64
	Lng       float64
	State     string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func (p CreateReservationParams) Args() []any {
	return []any{p.Name, p.CreatedBy, p.Address, p.Lat, p.Lng, p.State, p.CreatedAt, p.UpdatedAt}
}

type UpdateReservationFieldsParams struct {
	ID            int64
	ExpectedState string
	Name          string
	Address       string
	Lat           float64
	Lng           float64
	UpdatedAt     pgtype.Timestamptz
}

func (p UpdateReservationFieldsParams) Args() []any {
	return []any{p.ID, p.ExpectedState, p.Name, p.Address, p.Lat, p.Lng, p.UpdatedAt}
}

func ReservationToCreateParams(res *reservation.Reservation) CreateReservationParams {
	coords := res.Coordinates()
	return CreateReservationParams{
		Name:      res.Name().Value(),
		CreatedBy: res.CreatedBy(),
		Address:   res.Address().Value(),
		Lat:       coords.Lat(),
		Lng:       coords.Lng(),
		State:     res.State().String(),
		CreatedAt: pgconv.TimeToPgtype(res.CreatedAt()),
		UpdatedAt: pgconv.TimeToPgtype(res.UpdatedAt()),
	}
}

// ReservationToUpdateFieldsParams guards the update on the state the entity
// currently holds.
func ReservationToUpdateFieldsParams(res *reservation.Reservation) UpdateReservationFieldsParams {
	coords := res.Coordinates()
	return UpdateReservationFieldsParams{
		ID:            res.ID(),
		ExpectedState: res.State().String(),
		Name:          res.Name().Value(),
		Address:       res.Address().Value(),
		Lat:           coords.Lat(),
		Lng:           coords.Lng(),
		UpdatedAt:     pgconv.TimeToPgtype(res.UpdatedAt()),
	}
}
