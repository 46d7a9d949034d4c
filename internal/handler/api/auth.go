package api

import (
	"net/http"

	resdto "reservations-api/internal/handler/dto/response"
	"reservations-api/internal/handler/httperr"
	"reservations-api/internal/pkg/errs"
	"reservations-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// AuthHandler only describes the caller. Tokens are issued by an external
// identity provider sharing the signing secret.
type AuthHandler struct {
	userQueries queries.UserQueries
}

func NewAuthHandler(userQueries queries.UserQueries) *AuthHandler {
	return &AuthHandler{
		userQueries: userQueries,
	}
}

func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	u, err := h.userQueries.GetCurrentUser(c.Request.Context(), actor.ID)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "User not found", nil)
		case errs.Is(err, errs.ErrAuthorizationDenied):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Account is inactive", nil)
		default:
			respondInternal(c, err, nil, false)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAuthorizedUser(u))
}
