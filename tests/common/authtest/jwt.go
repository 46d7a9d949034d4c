//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"reservations-api/internal/domain/user"
	"reservations-api/internal/pkg/config"
	"reservations-api/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

// JWTHelper mints tokens the way the external identity provider would.
type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID int64, role user.Role) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	return h.sign(t, userID, role, duration)
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID int64, role user.Role) string {
	t.Helper()
	token := h.sign(t, userID, role, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	return token
}

// ForeignToken is signed with another secret.
func (h *JWTHelper) ForeignToken(t *testing.T, userID int64, role user.Role) string {
	t.Helper()
	service := jwt.NewService("another-secret", h.cfg.Issuer, time.Hour)
	token, err := service.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) sign(t *testing.T, userID int64, role user.Role, d time.Duration) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, h.cfg.Issuer, d)
	token, err := service.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}
