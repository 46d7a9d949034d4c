package authz

import (
	"fmt"

	"reservations-api/internal/domain/reservation"
	"reservations-api/internal/domain/user"
	"reservations-api/internal/pkg/errs"
)

type Actor struct {
	ID   int64
	Role user.Role
}

func (a Actor) IsGlobalViewer() bool {
	return a.Role.IsGlobalViewer()
}

type DenyCode string

const (
	DenyFinalState        DenyCode = "final_state"
	DenyInvalidTransition DenyCode = "invalid_transition"
	DenyRoleNotPermitted  DenyCode = "role_not_permitted"
	DenyNotOwner          DenyCode = "not_owner"
)

// Decision is the outcome of a policy check. Reason is meant to reach the
// client unchanged.
type Decision struct {
	Allowed bool
	Code    DenyCode
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(code DenyCode, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}

// Err returns nil for an allowed decision and a *DeniedError marked with
// errs.ErrAuthorizationDenied otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errs.Mark(&DeniedError{Decision: d}, errs.ErrAuthorizationDenied)
}

type DeniedError struct {
	Decision Decision
}

func (e *DeniedError) Error() string {
	return e.Decision.Reason
}

// target state -> roles allowed to drive a reservation into it
var permissionMatrix = map[reservation.State]map[user.Role]struct{}{
	reservation.StateScheduled: {
		user.RoleAdmin:       {},
		user.RoleCoordinator: {},
	},
	reservation.StateInstalled: {
		user.RoleAdmin:       {},
		user.RoleCoordinator: {},
		user.RoleTechnician:  {},
	},
	reservation.StateUninstalled: {
		user.RoleAdmin:      {},
		user.RoleTechnician: {},
	},
	reservation.StateCanceled: {
		user.RoleAdmin:       {},
		user.RoleCoordinator: {},
		user.RoleSeller:      {},
	},
}

func RolePermitted(role user.Role, target reservation.State) bool {
	_, ok := permissionMatrix[target][role]
	return ok
}

func CanView(actor Actor, res *reservation.Reservation) Decision {
	if actor.IsGlobalViewer() || res.IsOwnedBy(actor.ID) {
		return allow()
	}
	return deny(DenyNotOwner, "reservation belongs to another user")
}

func CanCreate(_ Actor) Decision {
	return allow()
}

// CanUpdateFields only gates on finality. Ownership is not checked here even
// though viewing is owner-scoped; kept as-is pending a product decision.
func CanUpdateFields(_ Actor, res *reservation.Reservation) Decision {
	if res.IsFinal() {
		return deny(DenyFinalState, "reservation in final state")
	}
	return allow()
}

// CanChangeState checks finality, then the lifecycle graph, then the
// permission matrix, stopping at the first failure.
func CanChangeState(actor Actor, res *reservation.Reservation, target reservation.State) Decision {
	current := res.State()
	if reservation.IsFinal(current) {
		return deny(DenyFinalState, "reservation in final state")
	}
	if !reservation.CanTransition(current, target) {
		return deny(DenyInvalidTransition, fmt.Sprintf("invalid transition: %s→%s", current, target))
	}
	if !RolePermitted(actor.Role, target) {
		return deny(DenyRoleNotPermitted, fmt.Sprintf("role %s cannot transition to %s", actor.Role, target))
	}
	return allow()
}
