package response

import (
	"reservations-api/internal/domain/user"
	"reservations-api/internal/usecase/queries"
)

type PermissionsResponse struct {
	CanManageAll bool   `json:"can_manage_all"`
	Role         string `json:"role"`
}

type MeResponse struct {
	User        *queries.AuthorizedUserView `json:"user"`
	Permissions PermissionsResponse         `json:"permissions"`
}

func FromAuthorizedUser(u *queries.AuthorizedUserView) *MeResponse {
	return &MeResponse{
		User: u,
		Permissions: PermissionsResponse{
			CanManageAll: user.Role(u.Role).IsGlobalViewer(),
			Role:         u.Role,
		},
	}
}
