package readstore

import (
	"context"

	"reservations-api/internal/infra"
	"reservations-api/internal/infra/db"
	"reservations-api/internal/pkg/pgconv"
	"reservations-api/internal/usecase/queries"
)

const findUserByIDSQL = `
SELECT id, name, email, role, is_active
FROM users
WHERE id = $1`

type UserReadStore struct {
	dbtx db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{dbtx: dbtx}
}

func (r *UserReadStore) FindByID(ctx context.Context, id int64) (*queries.AuthorizedUserView, error) {
	var u queries.AuthorizedUserView
	err := r.dbtx.QueryRow(ctx, findUserByIDSQL, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return &u, nil
}
