//go:build unit

package listing_test

import (
	"math"
	"sort"
	"testing"
	"time"

	"reservations-api/internal/domain/listing"
	"reservations-api/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func candidates() []listing.Candidate {
	return []listing.Candidate{
		{ID: 1, Name: "Bodega Norte", Address: "Calle 10", CreatedBy: 4, CreatorName: "Seller", CreatorEmail: "seller@reservations.com", State: reservation.StateReserved, Lat: 4.6097, Lng: -74.0817, CreatedAt: base, UpdatedAt: base},
		{ID: 2, Name: "Oficina Sur", Address: "Carrera 7", CreatedBy: 1, CreatorName: "Admin", CreatorEmail: "admin@reservations.com", State: reservation.StateScheduled, Lat: 4.65, Lng: -74.1, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "Planta Medellín", Address: "Avenida 80", CreatedBy: 4, CreatorName: "Seller", CreatorEmail: "seller@reservations.com", State: reservation.StateCanceled, Lat: 6.2442, Lng: -75.5812, CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Name: "Local norte", Address: "Calle 100", CreatedBy: 3, CreatorName: "Tech", CreatorEmail: "technician@reservations.com", State: reservation.StateInstalled, Lat: 4.6097, Lng: -74.0817, CreatedAt: base.Add(-24 * time.Hour), UpdatedAt: base},
	}
}

func ids(items []listing.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestApply_DefaultOrder(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{})
	require.NoError(t, err)

	res := spec.Apply(candidates())
	assert.Equal(t, []int64{3, 2, 1, 4}, ids(res.Items))
	assert.Equal(t, 4, res.Pagination.Total)
}

func TestApply_PageWindow(t *testing.T) {
	testCases := []struct {
		name string
		spec listing.Spec
		want []int64
	}{
		{name: "second page", spec: listing.Spec{Page: 2, Size: 3}, want: []int64{4}},
		{name: "page past the end", spec: listing.Spec{Page: 3, Size: 3}, want: []int64{}},
		{name: "huge page does not overflow", spec: listing.Spec{Page: math.MaxInt, Size: 100}, want: []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.spec.Order = []listing.SortKey{{Field: listing.SortCreatedAt, Desc: true}, {Field: listing.SortID, Desc: true}}
			res := tc.spec.Apply(candidates())
			assert.Equal(t, tc.want, ids(res.Items))
			assert.Equal(t, 4, res.Pagination.Total)
			if len(tc.want) == 0 {
				assert.Nil(t, res.Pagination.From)
				assert.Nil(t, res.Pagination.To)
			}
		})
	}
}

func TestApply_OwnerScope(t *testing.T) {
	spec, err := listing.Build(seller, listing.Params{})
	require.NoError(t, err)

	res := spec.Apply(candidates())
	assert.Equal(t, []int64{3, 1}, ids(res.Items))
	for _, it := range res.Items {
		assert.Equal(t, seller.ID, it.CreatedBy)
	}
}

func TestApply_TextSearch(t *testing.T) {
	t.Run("name match is case-insensitive", func(t *testing.T) {
		spec, err := listing.Build(admin, listing.Params{Filters: map[string]string{"q": "NORTE"}, Sort: "id"})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 4}, ids(spec.Apply(candidates()).Items))
	})

	t.Run("creator email also matches", func(t *testing.T) {
		spec, err := listing.Build(admin, listing.Params{Filters: map[string]string{"q": "technician@"}, Sort: "id"})
		require.NoError(t, err)
		assert.Equal(t, []int64{4}, ids(spec.Apply(candidates()).Items))
	})
}

func TestApply_CreatedBy(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{Filters: map[string]string{"created_by": "4"}, Sort: "id"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(spec.Apply(candidates()).Items))

	spec, err = listing.Build(admin, listing.Params{Filters: map[string]string{"created_by": "tech"}, Sort: "id"})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(spec.Apply(candidates()).Items))
}

func TestApply_CreatedRange(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{Filters: map[string]string{
		"created_after":  "2025-03-01",
		"created_before": "2025-03-01",
	}, Sort: "id"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(spec.Apply(candidates()).Items))
}

func TestApply_Geo(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{Filters: map[string]string{
		"lat": "4.6097", "lng": "-74.0817", "radius_km": "10",
	}})
	require.NoError(t, err)

	res := spec.Apply(candidates())
	assert.Equal(t, []int64{1, 4, 2}, ids(res.Items))
	require.NotNil(t, res.Items[0].DistanceKm)
	assert.Zero(t, *res.Items[0].DistanceKm)
	for _, it := range res.Items {
		assert.LessOrEqual(t, *it.DistanceKm, 10.0)
	}
}

func TestApply_GeoZeroRadiusKeepsExactPoint(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{Filters: map[string]string{
		"lat": "4.6097", "lng": "-74.0817", "radius_km": "0",
	}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(spec.Apply(candidates()).Items))
}

func TestApply_Pagination(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{Sort: "id", Size: "3", Page: "2"})
	require.NoError(t, err)

	res := spec.Apply(candidates())
	assert.Equal(t, []int64{4}, ids(res.Items))

	from, to := 4, 4
	assert.Equal(t, listing.Pagination{CurrentPage: 2, PerPage: 3, Total: 4, LastPage: 2, From: &from, To: &to}, res.Pagination)
}

func TestApply_PageBeyondLast(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{Page: "9"})
	require.NoError(t, err)

	res := spec.Apply(candidates())
	assert.Empty(t, res.Items)
	assert.Nil(t, res.Pagination.From)
	assert.Nil(t, res.Pagination.To)
}

func TestApply_DuplicatesAppearOnce(t *testing.T) {
	spec, err := listing.Build(admin, listing.Params{Sort: "id"})
	require.NoError(t, err)

	in := append(candidates(), candidates()[0])
	res := spec.Apply(in)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(res.Items))
	assert.Equal(t, 4, res.Pagination.Total)
}

func TestApply_ResultIsSubsetOfFilteredSet(t *testing.T) {
	for _, params := range []listing.Params{
		{Filters: map[string]string{"state": "RESERVED"}},
		{Filters: map[string]string{"q": "calle"}, Size: "1"},
		{Filters: map[string]string{"lat": "4.6", "lng": "-74.08", "radius_km": "50"}},
	} {
		spec, err := listing.Build(seller, params)
		require.NoError(t, err)

		for _, it := range spec.Apply(candidates()).Items {
			for _, p := range spec.Predicates {
				assert.True(t, p.Match(it.Candidate), "%+v does not satisfy %T", it.ID, p)
			}
		}
	}
}
