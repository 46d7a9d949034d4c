package shared

//go:generate go run go.uber.org/mock/mockgen -source=uow.go -destination=../../../tests/mock/shared/uow.go -package=sharedmock

import (
	"context"
	"time"

	"reservations-api/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Reservations() ReservationRepository
	IdempotencyKeys() IdempotencyRepository
	Reads() CommandReads
}

type CommandReads interface {
	ReservationByID(ctx context.Context, id int64) (*ReservationSnapshot, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) (int64, error)
	UpdateFields(ctx context.Context, res *reservation.Reservation) error
	UpdateState(ctx context.Context, id int64, expected, target reservation.State, at time.Time) error
}

type IdempotencyRepository interface {
	// Claim takes the key for this request. When the key is already held by
	// an unexpired record, claimed is false and the stored record is returned.
	Claim(ctx context.Context, claim IdempotencyClaim) (record *IdempotencyRecord, claimed bool, err error)
	Complete(ctx context.Context, key uuid.UUID, userID, reservationID int64, at time.Time) error
}
