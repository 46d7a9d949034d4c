//go:build unit

package authz_test

import (
	"testing"

	"reservations-api/internal/domain/authz"
	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/domain/user"

	"github.com/stretchr/testify/assert"
)

func statesOf(opts []authz.TransitionOption) []reservation.State {
	out := make([]reservation.State, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.State)
	}
	return out
}

func TestAllowedTransitions(t *testing.T) {
	tests := []struct {
		name    string
		role    user.Role
		current reservation.State
		want    []reservation.State
	}{
		{"admin from reserved", user.RoleAdmin, reservation.StateReserved, []reservation.State{reservation.StateScheduled, reservation.StateCanceled}},
		{"coordinator from reserved", user.RoleCoordinator, reservation.StateReserved, []reservation.State{reservation.StateScheduled, reservation.StateCanceled}},
		{"seller from reserved", user.RoleSeller, reservation.StateReserved, []reservation.State{reservation.StateCanceled}},
		{"technician from reserved", user.RoleTechnician, reservation.StateReserved, []reservation.State{}},
		{"technician from scheduled", user.RoleTechnician, reservation.StateScheduled, []reservation.State{reservation.StateInstalled}},
		{"seller from scheduled", user.RoleSeller, reservation.StateScheduled, []reservation.State{reservation.StateCanceled}},
		{"admin from scheduled", user.RoleAdmin, reservation.StateScheduled, []reservation.State{reservation.StateInstalled, reservation.StateCanceled}},
		{"admin from installed", user.RoleAdmin, reservation.StateInstalled, []reservation.State{}},
		{"technician from installed", user.RoleTechnician, reservation.StateInstalled, []reservation.State{}},
		{"admin from canceled", user.RoleAdmin, reservation.StateCanceled, []reservation.State{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := authz.AllowedTransitions(authz.Actor{ID: ownerID, Role: tt.role}, reservationIn(t, tt.current))
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, statesOf(got))
			for _, o := range got {
				assert.Equal(t, o.State.Label(), o.Label)
			}
		})
	}
}

func TestAllowedTransitions_AgreesWithPolicy(t *testing.T) {
	for _, current := range reservation.States() {
		res := reservationIn(t, current)
		for _, role := range user.Roles() {
			actor := authz.Actor{ID: ownerID, Role: role}
			listed := map[reservation.State]bool{}
			for _, o := range authz.AllowedTransitions(actor, res) {
				listed[o.State] = true
			}
			for _, target := range reservation.States() {
				assert.Equal(t, authz.CanChangeState(actor, res, target).Allowed, listed[target], "%s %s -> %s", role, current, target)
			}
		}
	}
}
