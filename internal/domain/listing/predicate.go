package listing

import (
	"strings"
	"time"

	"reservations-api/internal/domain/reservation"
)

// Predicate is one AND-composed condition of a listing. Stores translate each
// concrete type into their own query language; Match is the reference semantics.
type Predicate interface {
	Match(c Candidate) bool
}

// OwnerScope restricts owner-scoped actors to their own reservations.
type OwnerScope struct {
	OwnerID int64
}

func (p OwnerScope) Match(c Candidate) bool {
	return c.CreatedBy == p.OwnerID
}

// TextSearch matches name, address, or the creator's name/email, case-insensitive.
type TextSearch struct {
	Term string
}

func (p TextSearch) Match(c Candidate) bool {
	return containsFold(c.Name, p.Term) ||
		containsFold(c.Address, p.Term) ||
		containsFold(c.CreatorName, p.Term) ||
		containsFold(c.CreatorEmail, p.Term)
}

type StateEquals struct {
	State reservation.State
}

func (p StateEquals) Match(c Candidate) bool {
	return c.State == p.State
}

type CreatorIDEquals struct {
	ID int64
}

func (p CreatorIDEquals) Match(c Candidate) bool {
	return c.CreatedBy == p.ID
}

// CreatorSearch matches the creator's name or email, case-insensitive.
type CreatorSearch struct {
	Term string
}

func (p CreatorSearch) Match(c Candidate) bool {
	return containsFold(c.CreatorName, p.Term) || containsFold(c.CreatorEmail, p.Term)
}

// CreatedAfter is inclusive.
type CreatedAfter struct {
	From time.Time
}

func (p CreatedAfter) Match(c Candidate) bool {
	return !c.CreatedAt.Before(p.From)
}

// CreatedBefore is exclusive; Build sets Until to the start of the day after
// the requested date.
type CreatedBefore struct {
	Until time.Time
}

func (p CreatedBefore) Match(c Candidate) bool {
	return c.CreatedAt.Before(p.Until)
}

type LatEquals struct {
	Value float64
}

func (p LatEquals) Match(c Candidate) bool {
	return c.Lat == p.Value
}

type LngEquals struct {
	Value float64
}

func (p LngEquals) Match(c Candidate) bool {
	return c.Lng == p.Value
}

// GeoProximity keeps candidates within RadiusKm of Center.
type GeoProximity struct {
	Center   Point
	RadiusKm float64
}

func (p GeoProximity) Distance(c Candidate) float64 {
	return Haversine(p.Center, c.Point())
}

func (p GeoProximity) Match(c Candidate) bool {
	return p.Distance(c) <= p.RadiusKm
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
