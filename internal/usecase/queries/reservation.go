package queries

//go:generate go run go.uber.org/mock/mockgen -source=reservation.go -destination=../../../tests/mock/queries/reservation.go -package=queriesmock

import (
	"context"
	"strconv"

	"reservations-api/internal/domain/authz"
	"reservations-api/internal/domain/listing"
	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/infra"
	"reservations-api/internal/pkg/errs"
)

const DefaultNearbyLimit = 10

var (
	ErrReservationNotFound = errs.Mark(errs.New("reservation not found"), errs.ErrNotFound)
	ErrCorruptReservation  = errs.Mark(errs.New("stored reservation is invalid"), errs.ErrInternal)
)

type ReservationQueries interface {
	GetByID(ctx context.Context, actor authz.Actor, id int64) (*ReservationView, error)
	// GetByIDSystem skips the view check; used after the caller was already authorized.
	GetByIDSystem(ctx context.Context, actor authz.Actor, id int64) (*ReservationView, error)
	List(ctx context.Context, actor authz.Actor, params listing.Params) (*ReservationPage, error)
	Nearby(ctx context.Context, actor authz.Actor, params NearbyParams) (*NearbyResult, error)
	Stats(ctx context.Context, actor authz.Actor) (*ReservationStats, error)
}

type ReservationReadStore interface {
	FindByID(ctx context.Context, id int64) (*ReservationView, error)
}

type ReservationSearchStore interface {
	Search(ctx context.Context, spec *listing.Spec) ([]*ReservationView, int, error)
	Stats(ctx context.Context, ownerID *int64) (*ReservationStats, error)
}

type NearbyParams struct {
	Lat      float64
	Lng      float64
	RadiusKm *float64
	Limit    int
}

type reservationQueriesImpl struct {
	readStore   ReservationReadStore
	searchStore ReservationSearchStore
}

func NewReservationQueries(readStore ReservationReadStore, searchStore ReservationSearchStore) ReservationQueries {
	return &reservationQueriesImpl{
		readStore:   readStore,
		searchStore: searchStore,
	}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor authz.Actor, id int64) (*ReservationView, error) {
	view, res, err := q.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanView(actor, res).Err(); err != nil {
		return nil, err
	}
	view.AllowedTransitions = authz.AllowedTransitions(actor, res)
	return view, nil
}

func (q *reservationQueriesImpl) GetByIDSystem(ctx context.Context, actor authz.Actor, id int64) (*ReservationView, error) {
	view, res, err := q.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view.AllowedTransitions = authz.AllowedTransitions(actor, res)
	return view, nil
}

func (q *reservationQueriesImpl) load(ctx context.Context, id int64) (*ReservationView, *reservation.Reservation, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, ErrReservationNotFound
		}
		return nil, nil, errs.Mark(err, errs.ErrInternal)
	}
	res, err := toDomain(view)
	if err != nil {
		return nil, nil, err
	}
	return view, res, nil
}

func (q *reservationQueriesImpl) List(ctx context.Context, actor authz.Actor, params listing.Params) (*ReservationPage, error) {
	spec, err := listing.Build(actor, params)
	if err != nil {
		return nil, err
	}

	views, total, err := q.searchStore.Search(ctx, spec)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInternal)
	}
	if err := annotate(actor, views); err != nil {
		return nil, err
	}

	return &ReservationPage{
		Items:      views,
		Pagination: listing.NewPagination(spec.Page, spec.Size, total),
		Filters: FiltersMeta{
			Applied:   spec.Applied(),
			Available: listing.AvailableFilters(),
		},
		Sorting: spec.SortingMeta(),
	}, nil
}

// Nearby runs the listing pipeline with only a proximity filter, so ownership
// scoping and validation behave exactly as on the list endpoint.
func (q *reservationQueriesImpl) Nearby(ctx context.Context, actor authz.Actor, params NearbyParams) (*NearbyResult, error) {
	filters := map[string]string{
		listing.FilterLat: strconv.FormatFloat(params.Lat, 'f', -1, 64),
		listing.FilterLng: strconv.FormatFloat(params.Lng, 'f', -1, 64),
	}
	if params.RadiusKm != nil {
		filters[listing.FilterRadiusKm] = strconv.FormatFloat(*params.RadiusKm, 'f', -1, 64)
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	spec, err := listing.Build(actor, listing.Params{
		Filters: filters,
		Size:    strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}

	views, _, err := q.searchStore.Search(ctx, spec)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInternal)
	}
	if err := annotate(actor, views); err != nil {
		return nil, err
	}
	for _, v := range views {
		if v.DistanceKm != nil {
			rounded := listing.RoundKm(*v.DistanceKm)
			v.DistanceKm = &rounded
		}
	}

	return &NearbyResult{
		Center:     spec.Geo.Center,
		RadiusKm:   spec.Geo.RadiusKm,
		Results:    views,
		TotalFound: len(views),
	}, nil
}

func (q *reservationQueriesImpl) Stats(ctx context.Context, actor authz.Actor) (*ReservationStats, error) {
	var ownerID *int64
	if !actor.IsGlobalViewer() {
		ownerID = &actor.ID
	}

	stats, err := q.searchStore.Stats(ctx, ownerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInternal)
	}
	return stats, nil
}

func annotate(actor authz.Actor, views []*ReservationView) error {
	for _, v := range views {
		res, err := toDomain(v)
		if err != nil {
			return err
		}
		v.AllowedTransitions = authz.AllowedTransitions(actor, res)
	}
	return nil
}

func toDomain(v *ReservationView) (*reservation.Reservation, error) {
	res, err := reservation.Restore(v.ID, v.Name, v.CreatedBy, v.Address, v.Lat, v.Lng, v.State.String(), v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "reservation "+strconv.FormatInt(v.ID, 10)), ErrCorruptReservation)
	}
	return res, nil
}
