package authz

import "reservations-api/internal/domain/reservation"

type TransitionOption struct {
	State reservation.State
	Label string
}

// AllowedTransitions lists, in canonical state order, the targets the actor
// could move the reservation to right now. Advisory only; mutations re-run
// CanChangeState.
func AllowedTransitions(actor Actor, res *reservation.Reservation) []TransitionOption {
	options := []TransitionOption{}
	if res.IsFinal() {
		return options
	}
	for _, candidate := range reservation.States() {
		if !reservation.CanTransition(res.State(), candidate) {
			continue
		}
		if !CanChangeState(actor, res, candidate).Allowed {
			continue
		}
		options = append(options, TransitionOption{State: candidate, Label: candidate.Label()})
	}
	return options
}
