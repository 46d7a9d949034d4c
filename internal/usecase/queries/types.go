package queries

import (
	"time"

	"reservations-api/internal/domain/authz"
	"reservations-api/internal/domain/listing"
	"reservations-api/internal/domain/reservation"
)

// UserSummary is the creator as embedded in reservation views.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ReservationView is the read model of a reservation joined with its creator.
// AllowedTransitions is filled per actor by the query layer.
type ReservationView struct {
	ID                 int64
	Name               string
	CreatedBy          int64
	Creator            UserSummary
	Address            string
	Lat                float64
	Lng                float64
	State              reservation.State
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DistanceKm         *float64
	AllowedTransitions []authz.TransitionOption
}

type FiltersMeta struct {
	Applied   map[string]any `json:"applied"`
	Available map[string]any `json:"available"`
}

type ReservationPage struct {
	Items      []*ReservationView
	Pagination listing.Pagination
	Filters    FiltersMeta
	Sorting    listing.Sorting
}

type NearbyResult struct {
	Center     listing.Point
	RadiusKm   float64
	Results    []*ReservationView
	TotalFound int
}

type UserReservationCount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ReservationStats struct {
	TotalReservations int                    `json:"total_reservations"`
	States            map[string]int         `json:"states"`
	TopUsers          []UserReservationCount `json:"top_users"`
}

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
