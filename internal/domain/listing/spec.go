package listing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"reservations-api/internal/domain/authz"
	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/pkg/errs"
)

// Spec is a validated listing request: predicates are AND-composed, Order is
// applied left to right and Page/Size select the window.
type Spec struct {
	Predicates []Predicate
	Geo        *GeoProximity
	Order      []SortKey
	Page       int
	Size       int

	applied     map[string]any
	currentSort string
}

func (s *Spec) Offset() int {
	return (s.Page - 1) * s.Size
}

// Applied echoes the filters that took effect, keyed by filter name.
func (s *Spec) Applied() map[string]any {
	out := make(map[string]any, len(s.applied))
	for k, v := range s.applied {
		out[k] = v
	}
	return out
}

func (s *Spec) SortingMeta() Sorting {
	allowed := make([]string, len(sortFields))
	copy(allowed, sortFields)
	return Sorting{Allowed: allowed, Default: DefaultSort, Current: s.currentSort}
}

// AvailableFilters describes every accepted filter key.
func AvailableFilters() map[string]any {
	out := make(map[string]any, len(filterDescriptions))
	for k, v := range filterDescriptions {
		out[k] = v
	}
	return out
}

type builder struct {
	actor  authz.Actor
	params Params
	spec   *Spec
	errs   *errs.ValidationError

	lat, lng *float64
	radius   *float64
}

type stage func(b *builder)

// Build runs the listing pipeline in its fixed order: ownership injection,
// field filters, geo override, sort, paginate. All input problems are
// collected into a single invalid-input error.
func Build(actor authz.Actor, params Params) (*Spec, error) {
	b := &builder{
		actor:  actor,
		params: params,
		spec:   &Spec{applied: make(map[string]any)},
		errs:   &errs.ValidationError{},
	}

	for _, run := range []stage{
		injectOwnership,
		applyFieldFilters,
		applyGeoOverride,
		applySort,
		applyPagination,
	} {
		run(b)
	}

	if err := b.errs.Err(); err != nil {
		return nil, err
	}
	return b.spec, nil
}

func injectOwnership(b *builder) {
	if b.actor.IsGlobalViewer() {
		return
	}
	b.spec.Predicates = append(b.spec.Predicates, OwnerScope{OwnerID: b.actor.ID})
}

func filterField(key string) string {
	return "filter[" + key + "]"
}

func applyFieldFilters(b *builder) {
	raw := b.params.Filters

	var unknown []string
	for k := range raw {
		if !knownFilter(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		b.errs.Add(filterField(k), "unknown filter")
	}

	for _, key := range filterKeys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case FilterQuery:
			b.add(key, value, TextSearch{Term: value})
		case FilterState:
			state, err := reservation.ParseState(value)
			if err != nil {
				b.errs.Add(filterField(key), "must be one of RESERVED, SCHEDULED, INSTALLED, UNINSTALLED, CANCELED")
				continue
			}
			b.add(key, state.String(), StateEquals{State: state})
		case FilterCreatedBy:
			if id, err := strconv.ParseInt(value, 10, 64); err == nil {
				b.add(key, value, CreatorIDEquals{ID: id})
			} else {
				b.add(key, value, CreatorSearch{Term: value})
			}
		case FilterCreatedAfter:
			day, err := time.Parse(dateLayout, value)
			if err != nil {
				b.errs.Add(filterField(key), "must be a date formatted as YYYY-MM-DD")
				continue
			}
			b.add(key, value, CreatedAfter{From: day})
		case FilterCreatedBefore:
			day, err := time.Parse(dateLayout, value)
			if err != nil {
				b.errs.Add(filterField(key), "must be a date formatted as YYYY-MM-DD")
				continue
			}
			b.add(key, value, CreatedBefore{Until: day.AddDate(0, 0, 1)})
		case FilterLat:
			v, ok := parseFloat(value)
			if !ok || !validLatitude(v) {
				b.errs.Add(filterField(key), "must be a number between -90 and 90")
				continue
			}
			b.lat = &v
			b.add(key, v, LatEquals{Value: v})
		case FilterLng:
			v, ok := parseFloat(value)
			if !ok || !validLongitude(v) {
				b.errs.Add(filterField(key), "must be a number between -180 and 180")
				continue
			}
			b.lng = &v
			b.add(key, v, LngEquals{Value: v})
		case FilterRadiusKm:
			v, ok := parseFloat(value)
			if !ok || v < 0 {
				b.errs.Add(filterField(key), "must be a non-negative number")
				continue
			}
			b.radius = &v
		}
	}
}

func (b *builder) add(key string, echo any, p Predicate) {
	b.spec.Predicates = append(b.spec.Predicates, p)
	b.spec.applied[key] = echo
}

// applyGeoOverride swaps the exact lat/lng predicates for a proximity
// predicate once both coordinates are present.
func applyGeoOverride(b *builder) {
	if b.lat == nil || b.lng == nil {
		return
	}

	kept := b.spec.Predicates[:0]
	for _, p := range b.spec.Predicates {
		switch p.(type) {
		case LatEquals, LngEquals:
			continue
		}
		kept = append(kept, p)
	}
	delete(b.spec.applied, FilterLat)
	delete(b.spec.applied, FilterLng)

	radius := DefaultRadiusKm
	if b.radius != nil {
		radius = *b.radius
	}
	geo := GeoProximity{Center: Point{Lat: *b.lat, Lng: *b.lng}, RadiusKm: radius}
	b.spec.Predicates = append(kept, geo)
	b.spec.Geo = &geo
	b.spec.applied["near"] = map[string]float64{
		FilterLat:      geo.Center.Lat,
		FilterLng:      geo.Center.Lng,
		FilterRadiusKm: geo.RadiusKm,
	}
}

func applySort(b *builder) {
	raw := strings.TrimSpace(b.params.Sort)
	if raw == "" {
		raw = DefaultSort
	}

	keys, err := parseSort(raw)
	if err != nil {
		b.errs.Add("sort", err.Error())
		return
	}

	if b.spec.Geo != nil {
		b.spec.Order = []SortKey{{Field: SortDistance}, {Field: SortID}}
		b.spec.currentSort = SortDistance
		return
	}

	names := make([]string, 0, len(keys))
	hasID := false
	for _, k := range keys {
		names = append(names, k.String())
		if k.Field == SortID {
			hasID = true
		}
	}
	if !hasID {
		keys = append(keys, SortKey{Field: SortID, Desc: keys[0].Desc})
	}
	b.spec.Order = keys
	b.spec.currentSort = strings.Join(names, ",")
}

func applyPagination(b *builder) {
	b.spec.Page = DefaultPage
	if raw := strings.TrimSpace(b.params.Page); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			b.errs.Add("page", "must be a positive integer")
		} else {
			b.spec.Page = page
		}
	}

	b.spec.Size = DefaultPageSize
	if raw := strings.TrimSpace(b.params.Size); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			b.errs.Add("size", "must be a positive integer")
		} else {
			b.spec.Size = min(size, MaxPageSize)
		}
	}

	if b.spec.Page-1 > MaxOffset/b.spec.Size {
		b.errs.Add("page", fmt.Sprintf("must not exceed %d for size %d", MaxOffset/b.spec.Size+1, b.spec.Size))
	}
}

func knownFilter(key string) bool {
	for _, k := range filterKeys {
		if k == key {
			return true
		}
	}
	return false
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
