//go:build unit || e2e

package builder

import (
	"time"

	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/handler/dto/request"
	"reservations-api/internal/usecase/queries"
	"reservations-api/internal/usecase/shared"
)

type ReservationBuilder struct {
	ID        int64
	Name      string
	Address   string
	Lat       float64
	Lng       float64
	State     reservation.State
	Creator   *UserBuilder
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return &ReservationBuilder{
		ID:        10,
		Name:      "Instalación Playa Blanca",
		Address:   "Calle 10 #20-30, Cartagena",
		Lat:       10.3910,
		Lng:       -75.4794,
		State:     reservation.StateReserved,
		Creator:   NewUserBuilder(),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) WithID(id int64) *ReservationBuilder {
	b.ID = id
	return b
}

func (b *ReservationBuilder) WithState(state reservation.State) *ReservationBuilder {
	b.State = state
	return b
}

func (b *ReservationBuilder) WithCreator(creator *UserBuilder) *ReservationBuilder {
	b.Creator = creator
	return b
}

func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	return &queries.ReservationView{
		ID:        b.ID,
		Name:      b.Name,
		CreatedBy: b.Creator.ID,
		Creator:   b.Creator.BuildSummary(),
		Address:   b.Address,
		Lat:       b.Lat,
		Lng:       b.Lng,
		State:     b.State,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (b *ReservationBuilder) BuildSnapshot() *shared.ReservationSnapshot {
	return &shared.ReservationSnapshot{
		ID:        b.ID,
		Name:      b.Name,
		CreatedBy: b.Creator.ID,
		Address:   b.Address,
		Lat:       b.Lat,
		Lng:       b.Lng,
		State:     b.State,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (b *ReservationBuilder) BuildCreateDTO() request.CreateReservationRequest {
	lat, lng := b.Lat, b.Lng
	return request.CreateReservationRequest{
		Name:    b.Name,
		Address: b.Address,
		Lat:     &lat,
		Lng:     &lng,
	}
}
