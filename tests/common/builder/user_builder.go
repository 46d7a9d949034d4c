//go:build unit || e2e

package builder

import (
	"reservations-api/internal/domain/authz"
	"reservations-api/internal/domain/user"
	"reservations-api/internal/usecase/queries"
)

type UserBuilder struct {
	ID       int64
	Name     string
	Email    string
	Role     user.Role
	IsActive bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:       1,
		Name:     "Ana Seller",
		Email:    "ana@example.com",
		Role:     user.RoleSeller,
		IsActive: true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

func (u *UserBuilder) BuildActor() authz.Actor {
	return authz.Actor{ID: u.ID, Role: u.Role}
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role.String(),
		IsActive: u.IsActive,
	}
}

func (u *UserBuilder) BuildSummary() queries.UserSummary {
	return queries.UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role.String(),
	}
}

func (u *UserBuilder) WithID(id int64) *UserBuilder {
	u.ID = id
	return u
}

func (u *UserBuilder) WithRole(role user.Role) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}
