package reservation

import "errors"

var ErrInvalidState = errors.New("invalid reservation state")

type State string

const (
	StateReserved    State = "RESERVED"
	StateScheduled   State = "SCHEDULED"
	StateInstalled   State = "INSTALLED"
	StateUninstalled State = "UNINSTALLED"
	StateCanceled    State = "CANCELED"
)

// canonical order, also used to list allowed transitions
var states = []State{
	StateReserved,
	StateScheduled,
	StateInstalled,
	StateUninstalled,
	StateCanceled,
}

// transitions is the adjacency table of the lifecycle graph.
// INSTALLED keeps its edge to UNINSTALLED but is final, so the edge never fires.
var transitions = map[State]map[State]struct{}{
	StateReserved:  {StateScheduled: {}, StateCanceled: {}},
	StateScheduled: {StateInstalled: {}, StateCanceled: {}},
	StateInstalled: {StateUninstalled: {}},
}

var finalStates = map[State]struct{}{
	StateInstalled:   {},
	StateUninstalled: {},
	StateCanceled:    {},
}

var labels = map[State]string{
	StateReserved:    "Reservado",
	StateScheduled:   "Programado",
	StateInstalled:   "Instalado",
	StateUninstalled: "Desinstalado",
	StateCanceled:    "Cancelado",
}

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	_, ok := labels[s]
	return ok
}

func (s State) IsFinal() bool {
	return IsFinal(s)
}

func (s State) Label() string {
	return labels[s]
}

func ParseState(s string) (State, error) {
	state := State(s)
	if !state.IsValid() {
		return "", ErrInvalidState
	}
	return state, nil
}

func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

func IsFinal(s State) bool {
	_, ok := finalStates[s]
	return ok
}

func CanTransition(current, target State) bool {
	if IsFinal(current) {
		return false
	}
	_, ok := transitions[current][target]
	return ok
}
