//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"

	"reservations-api/internal/domain/listing"
	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/domain/user"
	"reservations-api/internal/infra"
	"reservations-api/internal/pkg/errs"
	"reservations-api/internal/usecase/queries"
	"reservations-api/tests/common/builder"
	queriesmock "reservations-api/tests/mock/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupQueries(t *testing.T) (queries.ReservationQueries, *queriesmock.MockReservationReadStore, *queriesmock.MockReservationSearchStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	readStore := queriesmock.NewMockReservationReadStore(ctrl)
	searchStore := queriesmock.NewMockReservationSearchStore(ctrl)
	return queries.NewReservationQueries(readStore, searchStore), readStore, searchStore
}

func transitionStates(v *queries.ReservationView) []reservation.State {
	out := make([]reservation.State, 0, len(v.AllowedTransitions))
	for _, tr := range v.AllowedTransitions {
		out = append(out, tr.State)
	}
	return out
}

func TestReservationQueries_GetByID(t *testing.T) {
	ctx := context.Background()
	owner := builder.NewUserBuilder()

	testCases := []struct {
		name            string
		actorID         int64
		role            user.Role
		storeErr        error
		wantErr         error
		wantTransitions []reservation.State
	}{
		{
			name:            "success: owner sees own reservation",
			actorID:         owner.ID,
			role:            user.RoleSeller,
			wantTransitions: []reservation.State{reservation.StateCanceled},
		},
		{
			name:            "success: coordinator sees any reservation",
			actorID:         50,
			role:            user.RoleCoordinator,
			wantTransitions: []reservation.State{reservation.StateScheduled, reservation.StateCanceled},
		},
		{
			name:            "success: technician owner has nothing to do yet",
			actorID:         owner.ID,
			role:            user.RoleTechnician,
			wantTransitions: []reservation.State{},
		},
		{
			name:    "error: other seller is denied",
			actorID: 77,
			role:    user.RoleSeller,
			wantErr: errs.ErrAuthorizationDenied,
		},
		{
			name:     "error: missing reservation",
			actorID:  owner.ID,
			role:     user.RoleSeller,
			storeErr: infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound),
			wantErr:  errs.ErrNotFound,
		},
		{
			name:     "error: database failure",
			actorID:  owner.ID,
			role:     user.RoleSeller,
			storeErr: infra.WrapRepoErr("failed to get reservation", errors.New("timeout")),
			wantErr:  errs.ErrInternal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, readStore, _ := setupQueries(t)
			view := builder.NewReservationBuilder().WithCreator(owner).BuildView()

			if tc.storeErr != nil {
				readStore.EXPECT().FindByID(ctx, view.ID).Return(nil, tc.storeErr)
			} else {
				readStore.EXPECT().FindByID(ctx, view.ID).Return(view, nil)
			}

			actor := builder.NewUserBuilder().WithID(tc.actorID).WithRole(tc.role).BuildActor()
			got, err := q.GetByID(ctx, actor, view.ID)

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errs.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTransitions, transitionStates(got))
		})
	}

	t.Run("error: corrupt row is internal", func(t *testing.T) {
		q, readStore, _ := setupQueries(t)
		view := builder.NewReservationBuilder().WithState("LOST").BuildView()
		readStore.EXPECT().FindByID(ctx, view.ID).Return(view, nil)

		_, err := q.GetByID(ctx, owner.BuildActor(), view.ID)
		assert.True(t, errs.Is(err, errs.ErrInternal))
	})
}

func TestReservationQueries_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success: seller listing is owner scoped", func(t *testing.T) {
		q, _, searchStore := setupQueries(t)
		seller := builder.NewUserBuilder().WithID(3).BuildActor()
		views := []*queries.ReservationView{
			builder.NewReservationBuilder().WithID(1).BuildView(),
			builder.NewReservationBuilder().WithID(2).WithState(reservation.StateCanceled).BuildView(),
		}

		searchStore.EXPECT().Search(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, spec *listing.Spec) ([]*queries.ReservationView, int, error) {
				assert.Contains(t, spec.Predicates, listing.Predicate(listing.OwnerScope{OwnerID: 3}))
				assert.Equal(t, 2, spec.Page)
				assert.Equal(t, 5, spec.Size)
				return views, 7, nil
			})

		page, err := q.List(ctx, seller, listing.Params{Page: "2", Size: "5", Filters: map[string]string{"q": "playa"}})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, listing.NewPagination(2, 5, 7), page.Pagination)
		assert.Equal(t, "playa", page.Filters.Applied["q"])
		assert.NotEmpty(t, page.Filters.Available)
		assert.Equal(t, listing.DefaultSort, page.Sorting.Current)
		assert.NotNil(t, page.Items[0].AllowedTransitions)
		assert.Empty(t, page.Items[1].AllowedTransitions)
	})

	t.Run("success: admin listing is not scoped", func(t *testing.T) {
		q, _, searchStore := setupQueries(t)
		admin := builder.NewUserBuilder().WithRole(user.RoleAdmin).BuildActor()

		searchStore.EXPECT().Search(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, spec *listing.Spec) ([]*queries.ReservationView, int, error) {
				for _, p := range spec.Predicates {
					_, scoped := p.(listing.OwnerScope)
					assert.False(t, scoped)
				}
				return nil, 0, nil
			})

		page, err := q.List(ctx, admin, listing.Params{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Nil(t, page.Pagination.From)
	})

	t.Run("error: invalid params never reach the store", func(t *testing.T) {
		q, _, _ := setupQueries(t)

		_, err := q.List(ctx, builder.NewUserBuilder().BuildActor(), listing.Params{Sort: "color", Size: "-1"})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrInvalidInput))
	})

	t.Run("error: store failure is internal", func(t *testing.T) {
		q, _, searchStore := setupQueries(t)
		searchStore.EXPECT().Search(ctx, gomock.Any()).Return(nil, 0, infra.WrapRepoErr("failed", errors.New("boom")))

		_, err := q.List(ctx, builder.NewUserBuilder().BuildActor(), listing.Params{})
		assert.True(t, errs.Is(err, errs.ErrInternal))
	})
}

func TestReservationQueries_Nearby(t *testing.T) {
	ctx := context.Background()
	actor := builder.NewUserBuilder().WithRole(user.RoleAdmin).BuildActor()

	t.Run("success: distances are rounded and limit applied", func(t *testing.T) {
		q, _, searchStore := setupQueries(t)
		view := builder.NewReservationBuilder().BuildView()
		d := 1.23456
		view.DistanceKm = &d

		searchStore.EXPECT().Search(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, spec *listing.Spec) ([]*queries.ReservationView, int, error) {
				require.NotNil(t, spec.Geo)
				assert.InDelta(t, 2.5, spec.Geo.RadiusKm, 1e-9)
				assert.Equal(t, 3, spec.Size)
				assert.Equal(t, listing.SortDistance, spec.Order[0].Field)
				return []*queries.ReservationView{view}, 1, nil
			})

		radius := 2.5
		result, err := q.Nearby(ctx, actor, queries.NearbyParams{Lat: 10.39, Lng: -75.47, RadiusKm: &radius, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalFound)
		assert.InDelta(t, 1.23, *result.Results[0].DistanceKm, 1e-9)
		assert.Equal(t, listing.Point{Lat: 10.39, Lng: -75.47}, result.Center)
		assert.InDelta(t, 2.5, result.RadiusKm, 1e-9)
	})

	t.Run("success: defaults", func(t *testing.T) {
		q, _, searchStore := setupQueries(t)

		searchStore.EXPECT().Search(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, spec *listing.Spec) ([]*queries.ReservationView, int, error) {
				assert.Equal(t, queries.DefaultNearbyLimit, spec.Size)
				assert.InDelta(t, listing.DefaultRadiusKm, spec.Geo.RadiusKm, 1e-9)
				return nil, 0, nil
			})

		result, err := q.Nearby(ctx, actor, queries.NearbyParams{Lat: 0, Lng: 0})
		require.NoError(t, err)
		assert.Zero(t, result.TotalFound)
		assert.InDelta(t, listing.DefaultRadiusKm, result.RadiusKm, 1e-9)
	})
}

func TestReservationQueries_Stats(t *testing.T) {
	ctx := context.Background()
	stats := &queries.ReservationStats{TotalReservations: 1, States: map[string]int{"RESERVED": 1}}

	testCases := []struct {
		name      string
		role      user.Role
		wantOwner bool
	}{
		{name: "admin sees everything", role: user.RoleAdmin},
		{name: "coordinator sees everything", role: user.RoleCoordinator},
		{name: "technician sees own", role: user.RoleTechnician, wantOwner: true},
		{name: "seller sees own", role: user.RoleSeller, wantOwner: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, _, searchStore := setupQueries(t)
			actor := builder.NewUserBuilder().WithID(9).WithRole(tc.role).BuildActor()

			searchStore.EXPECT().Stats(ctx, gomock.Any()).DoAndReturn(
				func(_ context.Context, ownerID *int64) (*queries.ReservationStats, error) {
					if tc.wantOwner {
						require.NotNil(t, ownerID)
						assert.Equal(t, int64(9), *ownerID)
					} else {
						assert.Nil(t, ownerID)
					}
					return stats, nil
				})

			got, err := q.Stats(ctx, actor)
			require.NoError(t, err)
			assert.Same(t, stats, got)
		})
	}
}
