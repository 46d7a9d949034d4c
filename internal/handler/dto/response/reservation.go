package response

import (
	"strconv"
	"time"

	"reservations-api/internal/domain/listing"
	"reservations-api/internal/usecase/commands"
	"reservations-api/internal/usecase/queries"
)

type CreatorResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TransitionResponse struct {
	State string `json:"state"`
	Label string `json:"label"`
}

type LinksResponse struct {
	Self        string `json:"self"`
	Update      string `json:"update"`
	ChangeState string `json:"change_state"`
}

type ReservationResponse struct {
	ID                 int64                `json:"id"`
	Name               string               `json:"name"`
	CreatedBy          int64                `json:"created_by"`
	Creator            CreatorResponse      `json:"creator"`
	Address            string               `json:"address"`
	Coordinates        CoordinatesResponse  `json:"coordinates"`
	State              string               `json:"state"`
	StateLabel         string               `json:"state_label"`
	IsFinalState       bool                 `json:"is_final_state"`
	AllowedTransitions []TransitionResponse `json:"allowed_transitions"`
	DistanceKm         *float64             `json:"distance_km,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Links              LinksResponse        `json:"links"`
}

// FromReservationView projects a read model. baseURL prefixes the links and
// may be empty for relative links.
func FromReservationView(v *queries.ReservationView, baseURL string) *ReservationResponse {
	transitions := make([]TransitionResponse, 0, len(v.AllowedTransitions))
	for _, t := range v.AllowedTransitions {
		transitions = append(transitions, TransitionResponse{State: t.State.String(), Label: t.Label})
	}

	self := baseURL + "/api/reservations/" + strconv.FormatInt(v.ID, 10)
	return &ReservationResponse{
		ID:        v.ID,
		Name:      v.Name,
		CreatedBy: v.CreatedBy,
		Creator: CreatorResponse{
			ID:    v.Creator.ID,
			Name:  v.Creator.Name,
			Email: v.Creator.Email,
			Role:  v.Creator.Role,
		},
		Address:            v.Address,
		Coordinates:        CoordinatesResponse{Lat: v.Lat, Lng: v.Lng},
		State:              v.State.String(),
		StateLabel:         v.State.Label(),
		IsFinalState:       v.State.IsFinal(),
		AllowedTransitions: transitions,
		DistanceKm:         v.DistanceKm,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
		Links: LinksResponse{
			Self:        self,
			Update:      self,
			ChangeState: self + "/state",
		},
	}
}

func FromReservationViews(views []*queries.ReservationView, baseURL string) []*ReservationResponse {
	out := make([]*ReservationResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromReservationView(v, baseURL))
	}
	return out
}

type Envelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type ListMeta struct {
	Filters    queries.FiltersMeta `json:"filters"`
	Pagination listing.Pagination  `json:"pagination"`
	Sorting    listing.Sorting     `json:"sorting"`
}

type ReservationListResponse struct {
	Message string                 `json:"message,omitempty"`
	Data    []*ReservationResponse `json:"data"`
	Meta    ListMeta               `json:"meta"`
}

func FromReservationPage(page *queries.ReservationPage, baseURL string) *ReservationListResponse {
	return &ReservationListResponse{
		Data: FromReservationViews(page.Items, baseURL),
		Meta: ListMeta{
			Filters:    page.Filters,
			Pagination: page.Pagination,
			Sorting:    page.Sorting,
		},
	}
}

type StateChangeResponse struct {
	PreviousState string               `json:"previous_state"`
	CurrentState  string               `json:"current_state"`
	Reservation   *ReservationResponse `json:"reservation"`
}

func FromChangeStateResult(r *commands.ChangeStateResult, baseURL string) *StateChangeResponse {
	return &StateChangeResponse{
		PreviousState: r.PreviousState.String(),
		CurrentState:  r.CurrentState.String(),
		Reservation:   FromReservationView(r.Reservation, baseURL),
	}
}

type NearbyResponse struct {
	Center     CoordinatesResponse    `json:"center"`
	RadiusKm   float64                `json:"radius_km"`
	Results    []*ReservationResponse `json:"results"`
	TotalFound int                    `json:"total_found"`
}

func FromNearbyResult(r *queries.NearbyResult, baseURL string) *NearbyResponse {
	return &NearbyResponse{
		Center:     CoordinatesResponse{Lat: r.Center.Lat, Lng: r.Center.Lng},
		RadiusKm:   r.RadiusKm,
		Results:    FromReservationViews(r.Results, baseURL),
		TotalFound: r.TotalFound,
	}
}
