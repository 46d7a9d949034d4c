package reservation

import (
	"errors"
	"time"

	"reservations-api/internal/pkg/patch"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type Reservation struct {
	id          int64
	name        Name
	createdBy   int64
	address     Address
	coordinates Coordinates
	state       State
	createdAt   time.Time
	updatedAt   time.Time
}

// NewReservation always starts in RESERVED and is owned by its creator.
func NewReservation(name Name, address Address, coords Coordinates, createdBy int64, now time.Time) *Reservation {
	return &Reservation{
		name:        name,
		createdBy:   createdBy,
		address:     address,
		coordinates: coords,
		state:       StateReserved,
		createdAt:   now,
		updatedAt:   now,
	}
}

func ReconstructReservation(
	id int64,
	name Name,
	createdBy int64,
	address Address,
	coords Coordinates,
	state State,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:          id,
		name:        name,
		createdBy:   createdBy,
		address:     address,
		coordinates: coords,
		state:       state,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Restore rebuilds a persisted reservation from raw column values,
// re-validating each of them.
func Restore(
	id int64,
	rawName string,
	createdBy int64,
	rawAddress string,
	lat, lng float64,
	rawState string,
	createdAt, updatedAt time.Time,
) (*Reservation, error) {
	name, err := NewName(rawName)
	if err != nil {
		return nil, err
	}
	address, err := NewAddress(rawAddress)
	if err != nil {
		return nil, err
	}
	coords, err := NewCoordinates(lat, lng)
	if err != nil {
		return nil, err
	}
	state, err := ParseState(rawState)
	if err != nil {
		return nil, err
	}
	return ReconstructReservation(id, name, createdBy, address, coords, state, createdAt, updatedAt), nil
}

// FieldChanges is a partial edit; nil fields keep their current value.
type FieldChanges struct {
	Name    *string
	Address *string
	Lat     *float64
	Lng     *float64
}

func (c FieldChanges) IsEmpty() bool {
	return c.Name == nil && c.Address == nil && c.Lat == nil && c.Lng == nil
}

// ApplyFieldChanges validates the merged values before touching the entity.
func (r *Reservation) ApplyFieldChanges(changes FieldChanges, now time.Time) error {
	name, err := NewName(patch.Coalesce(changes.Name, r.name.Value()))
	if err != nil {
		return err
	}
	address, err := NewAddress(patch.Coalesce(changes.Address, r.address.Value()))
	if err != nil {
		return err
	}
	coords, err := NewCoordinates(
		patch.Coalesce(changes.Lat, r.coordinates.Lat()),
		patch.Coalesce(changes.Lng, r.coordinates.Lng()),
	)
	if err != nil {
		return err
	}

	r.name = name
	r.address = address
	r.coordinates = coords
	r.updatedAt = now
	return nil
}

func (r *Reservation) TransitionTo(target State, now time.Time) error {
	if !CanTransition(r.state, target) {
		return ErrInvalidTransition
	}
	r.state = target
	r.updatedAt = now
	return nil
}

func (r *Reservation) IsFinal() bool {
	return IsFinal(r.state)
}

func (r *Reservation) IsOwnedBy(userID int64) bool {
	return r.createdBy == userID
}

func (r *Reservation) ID() int64                { return r.id }
func (r *Reservation) Name() Name               { return r.name }
func (r *Reservation) CreatedBy() int64         { return r.createdBy }
func (r *Reservation) Address() Address         { return r.address }
func (r *Reservation) Coordinates() Coordinates { return r.coordinates }
func (r *Reservation) State() State             { return r.state }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time     { return r.updatedAt }
