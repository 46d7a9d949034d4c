package listing

import (
	"cmp"
	"slices"
	"strings"
)

// Item is a candidate that survived filtering. DistanceKm is set only when
// proximity is active.
type Item struct {
	Candidate
	DistanceKm *float64
}

type Result struct {
	Items      []Item
	Pagination Pagination
}

// Apply evaluates a Spec against an in-memory candidate set. Stores that
// push a Spec down to SQL must return the same page.
func (s *Spec) Apply(candidates []Candidate) Result {
	seen := make(map[int64]struct{}, len(candidates))
	matched := make([]Item, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if !s.matches(c) {
			continue
		}
		item := Item{Candidate: c}
		if s.Geo != nil {
			d := s.Geo.Distance(c)
			item.DistanceKm = &d
		}
		matched = append(matched, item)
	}

	slices.SortStableFunc(matched, func(a, b Item) int {
		for _, key := range s.Order {
			c := compareBy(key.Field, a, b)
			if key.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	total := len(matched)
	start, end := window(s.Page, s.Size, total)

	return Result{
		Items:      matched[start:end],
		Pagination: NewPagination(s.Page, s.Size, total),
	}
}

func (s *Spec) matches(c Candidate) bool {
	for _, p := range s.Predicates {
		if !p.Match(c) {
			return false
		}
	}
	return true
}

func compareBy(field string, a, b Item) int {
	switch field {
	case SortID:
		return cmp.Compare(a.ID, b.ID)
	case SortName:
		return strings.Compare(a.Name, b.Name)
	case SortState:
		return strings.Compare(a.State.String(), b.State.String())
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortDistance:
		if a.DistanceKm == nil || b.DistanceKm == nil {
			return 0
		}
		return cmp.Compare(*a.DistanceKm, *b.DistanceKm)
	}
	return 0
}
