package request

import (
	"reservations-api/internal/usecase/commands"
	"reservations-api/internal/usecase/queries"
)

// Coordinates are pointers so that 0 is distinguishable from a missing value.
type CreateReservationRequest struct {
	Name    string   `json:"name" binding:"required,max=255"`
	Address string   `json:"address" binding:"required,max=500"`
	Lat     *float64 `json:"lat" binding:"required,latitude"`
	Lng     *float64 `json:"lng" binding:"required,longitude"`
	State   *string  `json:"state,omitempty"`
}

func (r CreateReservationRequest) ToInput() commands.CreateReservationInput {
	return commands.CreateReservationInput{
		Name:    r.Name,
		Address: r.Address,
		Lat:     *r.Lat,
		Lng:     *r.Lng,
		State:   r.State,
	}
}

type UpdateReservationRequest struct {
	Name    *string  `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Address *string  `json:"address,omitempty" binding:"omitempty,min=1,max=500"`
	Lat     *float64 `json:"lat,omitempty" binding:"omitempty,latitude"`
	Lng     *float64 `json:"lng,omitempty" binding:"omitempty,longitude"`
	// State is accepted so strict decoding does not reject it, then dropped.
	// Transitions only go through PATCH /reservations/:id/state.
	State *string `json:"state,omitempty"`
}

func (r UpdateReservationRequest) ToInput() commands.UpdateReservationInput {
	return commands.UpdateReservationInput{
		Name:    r.Name,
		Address: r.Address,
		Lat:     r.Lat,
		Lng:     r.Lng,
	}
}

type ChangeStateRequest struct {
	State string `json:"state" binding:"required"`
}

type NearbyQuery struct {
	Lat      *float64 `form:"lat" binding:"required,latitude"`
	Lng      *float64 `form:"lng" binding:"required,longitude"`
	RadiusKm *float64 `form:"radius_km" binding:"omitempty,gte=0"`
	Limit    int      `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q NearbyQuery) ToParams() queries.NearbyParams {
	return queries.NearbyParams{
		Lat:      *q.Lat,
		Lng:      *q.Lng,
		RadiusKm: q.RadiusKm,
		Limit:    q.Limit,
	}
}
