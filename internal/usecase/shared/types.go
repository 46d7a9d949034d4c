package shared

import (
	"time"

	"reservations-api/internal/domain/reservation"

	"github.com/google/uuid"
)

// Minimal snapshot for command read operations
type ReservationSnapshot struct {
	ID        int64
	Name      string
	CreatedBy int64
	Address   string
	Lat       float64
	Lng       float64
	State     reservation.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *ReservationSnapshot) ToDomain() (*reservation.Reservation, error) {
	return reservation.Restore(s.ID, s.Name, s.CreatedBy, s.Address, s.Lat, s.Lng, s.State.String(), s.CreatedAt, s.UpdatedAt)
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyClaim struct {
	Key         uuid.UUID
	UserID      int64
	Endpoint    string
	RequestHash string
	Now         time.Time
	ExpiresAt   time.Time
}

type IdempotencyRecord struct {
	Key                 uuid.UUID
	UserID              int64
	RequestHash         string
	Status              string
	ResultReservationID *int64
	ExpiresAt           time.Time
}
