package commands

//go:generate go run go.uber.org/mock/mockgen -source=reservation.go -destination=../../../tests/mock/commands/reservation.go -package=commandsmock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"reservations-api/internal/domain/authz"
	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/infra"
	"reservations-api/internal/pkg/clock"
	"reservations-api/internal/pkg/errs"
	"reservations-api/internal/usecase/queries"
	"reservations-api/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	createReservationEndpoint = "POST /api/reservations"
	idempotencyKeyTTL         = 24 * time.Hour
)

var (
	ErrReservationNotFound  = errs.Mark(errs.New("reservation not found"), errs.ErrNotFound)
	ErrReservationConflict  = errs.Mark(errs.New("reservation was modified by another request"), errs.ErrConflict)
	ErrUnknownCreator       = errs.Mark(errs.New("acting user does not exist"), errs.ErrAuthorizationDenied)
	ErrInitialState         = errs.NewFieldError("state", "new reservations must start in RESERVED")
	ErrInvalidTargetState   = errs.NewFieldError("state", "must be one of RESERVED, SCHEDULED, INSTALLED, UNINSTALLED, CANCELED")
	ErrIdempotencyKeyReused = errs.Mark(errs.New("idempotency key was already used with a different request"), errs.ErrConflict)
)

type CreateReservationInput struct {
	Name    string
	Address string
	Lat     float64
	Lng     float64
	// State is optional and may only name the initial state.
	State *string
	// IdempotencyKey makes retries of the same request return the
	// reservation created by the first attempt.
	IdempotencyKey *uuid.UUID `json:"-"`
}

type UpdateReservationInput struct {
	Name    *string
	Address *string
	Lat     *float64
	Lng     *float64
}

type ChangeStateResult struct {
	PreviousState reservation.State
	CurrentState  reservation.State
	Reservation   *queries.ReservationView
}

type ReservationCommands interface {
	Create(ctx context.Context, actor authz.Actor, input CreateReservationInput) (*queries.ReservationView, error)
	UpdateFields(ctx context.Context, actor authz.Actor, id int64, input UpdateReservationInput) (*queries.ReservationView, error)
	ChangeState(ctx context.Context, actor authz.Actor, id int64, target string) (*ChangeStateResult, error)
}

type reservationUseCaseImpl struct {
	uow     shared.UnitOfWork
	queries queries.ReservationQueries
	clock   clock.Clock
}

func NewReservationUseCase(uow shared.UnitOfWork, reservationQueries queries.ReservationQueries, clk clock.Clock) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:     uow,
		queries: reservationQueries,
		clock:   clk,
	}
}

func (uc *reservationUseCaseImpl) Create(ctx context.Context, actor authz.Actor, input CreateReservationInput) (*queries.ReservationView, error) {
	if err := authz.CanCreate(actor).Err(); err != nil {
		return nil, err
	}
	if input.State != nil {
		state, err := reservation.ParseState(*input.State)
		if err != nil {
			return nil, ErrInvalidTargetState
		}
		if state != reservation.StateReserved {
			return nil, ErrInitialState
		}
	}

	name, address, coords, err := validateNewReservation(input)
	if err != nil {
		return nil, err
	}
	res := reservation.NewReservation(name, address, coords, actor.ID, uc.clock.Now())

	var id int64
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if input.IdempotencyKey == nil {
			created, err := tx.Reservations().Create(ctx, res)
			if err != nil {
				return err
			}
			id = created
			return nil
		}

		created, err := uc.createOnce(ctx, tx, actor, *input.IdempotencyKey, requestHash(input), res)
		if err != nil {
			return err
		}
		id = created
		return nil
	})
	if err != nil {
		return nil, translateRepoErr(err)
	}

	return uc.queries.GetByIDSystem(ctx, actor, id)
}

// createOnce runs inside the creating transaction so the key and the
// reservation commit or roll back together.
func (uc *reservationUseCaseImpl) createOnce(
	ctx context.Context,
	tx shared.Tx,
	actor authz.Actor,
	key uuid.UUID,
	hash string,
	res *reservation.Reservation,
) (int64, error) {
	now := uc.clock.Now()
	record, claimed, err := tx.IdempotencyKeys().Claim(ctx, shared.IdempotencyClaim{
		Key:         key,
		UserID:      actor.ID,
		Endpoint:    createReservationEndpoint,
		RequestHash: hash,
		Now:         now,
		ExpiresAt:   now.Add(idempotencyKeyTTL),
	})
	if err != nil {
		return 0, err
	}

	if !claimed {
		if record.RequestHash != hash {
			return 0, ErrIdempotencyKeyReused
		}
		if record.Status != shared.IdempotencyStatusCompleted || record.ResultReservationID == nil {
			return 0, errs.Mark(errs.Newf("idempotency key %s has no result", key), errs.ErrInternal)
		}
		slog.InfoContext(ctx, "replaying idempotent reservation create",
			"idempotency_key", key.String(),
			"actor_id", actor.ID,
			"reservation_id", *record.ResultReservationID)
		return *record.ResultReservationID, nil
	}

	id, err := tx.Reservations().Create(ctx, res)
	if err != nil {
		return 0, err
	}
	if err := tx.IdempotencyKeys().Complete(ctx, key, actor.ID, id, now); err != nil {
		return 0, err
	}
	return id, nil
}

func requestHash(input CreateReservationInput) string {
	data, _ := json.Marshal(input)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (uc *reservationUseCaseImpl) UpdateFields(ctx context.Context, actor authz.Actor, id int64, input UpdateReservationInput) (*queries.ReservationView, error) {
	changes := reservation.FieldChanges{
		Name:    input.Name,
		Address: input.Address,
		Lat:     input.Lat,
		Lng:     input.Lng,
	}
	if err := validateChanges(changes); err != nil {
		return nil, err
	}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.CanUpdateFields(actor, res).Err(); err != nil {
			return err
		}
		if changes.IsEmpty() {
			return nil
		}
		if err := res.ApplyFieldChanges(changes, uc.clock.Now()); err != nil {
			return fieldError(err)
		}
		return tx.Reservations().UpdateFields(ctx, res)
	})
	if err != nil {
		return nil, translateRepoErr(err)
	}

	return uc.queries.GetByIDSystem(ctx, actor, id)
}

// ChangeState authorizes against the snapshot it read and then writes with a
// compare-and-set on that snapshot's state, so a concurrent transition turns
// into a conflict instead of being overwritten.
func (uc *reservationUseCaseImpl) ChangeState(ctx context.Context, actor authz.Actor, id int64, target string) (*ChangeStateResult, error) {
	targetState, err := reservation.ParseState(target)
	if err != nil {
		return nil, ErrInvalidTargetState
	}

	var previous reservation.State
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.CanChangeState(actor, res, targetState).Err(); err != nil {
			return err
		}

		previous = res.State()
		now := uc.clock.Now()
		if err := res.TransitionTo(targetState, now); err != nil {
			return errs.Mark(err, errs.ErrInternal)
		}
		return tx.Reservations().UpdateState(ctx, id, previous, targetState, now)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			slog.InfoContext(ctx, "reservation state changed concurrently",
				"reservation_id", id,
				"actor_id", actor.ID,
				"target", targetState.String())
		}
		return nil, translateRepoErr(err)
	}

	view, err := uc.queries.GetByIDSystem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &ChangeStateResult{
		PreviousState: previous,
		CurrentState:  targetState,
		Reservation:   view,
	}, nil
}

func loadReservation(ctx context.Context, tx shared.Tx, id int64) (*reservation.Reservation, error) {
	snap, err := tx.Reads().ReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := snap.ToDomain()
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "stored reservation is invalid"), errs.ErrInternal)
	}
	return res, nil
}

func validateNewReservation(input CreateReservationInput) (reservation.Name, reservation.Address, reservation.Coordinates, error) {
	ve := &errs.ValidationError{}

	name, err := reservation.NewName(input.Name)
	if err != nil {
		ve.Add("name", err.Error())
	}
	address, err := reservation.NewAddress(input.Address)
	if err != nil {
		ve.Add("address", err.Error())
	}
	addCoordinateErrors(ve, &input.Lat, &input.Lng)
	if err := ve.Err(); err != nil {
		return reservation.Name{}, reservation.Address{}, reservation.Coordinates{}, err
	}

	coords, err := reservation.NewCoordinates(input.Lat, input.Lng)
	if err != nil {
		return reservation.Name{}, reservation.Address{}, reservation.Coordinates{}, fieldError(err)
	}
	return name, address, coords, nil
}

// validateChanges checks only the fields present in the patch.
func validateChanges(changes reservation.FieldChanges) error {
	ve := &errs.ValidationError{}
	if changes.Name != nil {
		if _, err := reservation.NewName(*changes.Name); err != nil {
			ve.Add("name", err.Error())
		}
	}
	if changes.Address != nil {
		if _, err := reservation.NewAddress(*changes.Address); err != nil {
			ve.Add("address", err.Error())
		}
	}
	addCoordinateErrors(ve, changes.Lat, changes.Lng)
	return ve.Err()
}

func addCoordinateErrors(ve *errs.ValidationError, lat, lng *float64) {
	if lat != nil {
		if _, err := reservation.NewCoordinates(*lat, 0); err != nil {
			ve.Add("lat", err.Error())
		}
	}
	if lng != nil {
		if _, err := reservation.NewCoordinates(0, *lng); err != nil {
			ve.Add("lng", err.Error())
		}
	}
}

func fieldError(err error) error {
	switch {
	case errs.Is(err, reservation.ErrInvalidName), errs.Is(err, reservation.ErrNameTooLong):
		return errs.NewFieldError("name", err.Error())
	case errs.Is(err, reservation.ErrInvalidAddress), errs.Is(err, reservation.ErrAddressTooLong):
		return errs.NewFieldError("address", err.Error())
	case errs.Is(err, reservation.ErrInvalidLatitude):
		return errs.NewFieldError("lat", err.Error())
	case errs.Is(err, reservation.ErrInvalidLongitude):
		return errs.NewFieldError("lng", err.Error())
	default:
		return errs.Mark(err, errs.ErrInternal)
	}
}

func translateRepoErr(err error) error {
	switch {
	case infra.IsKind(err, infra.KindNotFound):
		return ErrReservationNotFound
	case infra.IsKind(err, infra.KindConflict):
		return ErrReservationConflict
	case infra.IsKind(err, infra.KindForeignKeyViolated):
		return ErrUnknownCreator
	case errs.Is(err, errs.ErrInvalidInput),
		errs.Is(err, errs.ErrAuthorizationDenied),
		errs.Is(err, errs.ErrNotFound),
		errs.Is(err, errs.ErrConflict),
		errs.Is(err, errs.ErrInternal):
		return err
	default:
		return errs.Mark(err, errs.ErrInternal)
	}
}
