package listing

import (
	"math"
	"time"

	"reservations-api/internal/domain/reservation"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 15
	MaxPageSize     = 100
	// MaxOffset bounds (page-1)*size to what the SQL layer can address.
	MaxOffset       = math.MaxInt32
	DefaultRadiusKm = 10.0
	DefaultSort     = "-created_at"

	dateLayout = "2006-01-02"
)

// Filter keys accepted under filter[...].
const (
	FilterQuery         = "q"
	FilterState         = "state"
	FilterCreatedBy     = "created_by"
	FilterCreatedAfter  = "created_after"
	FilterCreatedBefore = "created_before"
	FilterLat           = "lat"
	FilterLng           = "lng"
	FilterRadiusKm      = "radius_km"
)

var filterKeys = []string{
	FilterQuery,
	FilterState,
	FilterCreatedBy,
	FilterCreatedAfter,
	FilterCreatedBefore,
	FilterLat,
	FilterLng,
	FilterRadiusKm,
}

var filterDescriptions = map[string]any{
	FilterQuery:         "Text contained in name, address, or creator name/email",
	FilterState:         "Exact state (RESERVED, SCHEDULED, INSTALLED, UNINSTALLED, CANCELED)",
	FilterCreatedBy:     "Creator id, or text contained in creator name/email",
	FilterCreatedAfter:  "Created on or after date (YYYY-MM-DD)",
	FilterCreatedBefore: "Created on or before date (YYYY-MM-DD)",
	"near": map[string]string{
		FilterLat:      "Center latitude",
		FilterLng:      "Center longitude",
		FilterRadiusKm: "Radius in kilometers (default: 10)",
	},
}

// Params holds the raw listing query. Values are parsed and validated by Build.
type Params struct {
	Filters map[string]string
	Page    string
	Size    string
	Sort    string
}

// Candidate is the flattened reservation row predicates are evaluated against.
type Candidate struct {
	ID           int64
	Name         string
	Address      string
	CreatedBy    int64
	CreatorName  string
	CreatorEmail string
	State        reservation.State
	Lat          float64
	Lng          float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c Candidate) Point() Point {
	return Point{Lat: c.Lat, Lng: c.Lng}
}
