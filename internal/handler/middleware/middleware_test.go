//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reservations-api/internal/domain/user"
	"reservations-api/internal/handler/middleware"
	"reservations-api/internal/pkg/config"
	testhttp "reservations-api/tests/common/httptest"
	usecasemock "reservations-api/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, validator *usecasemock.MockTokenValidator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.CustomRecovery())
	r.Use(middleware.LoggingMiddleware(nil, config.NewTestConfig().Log))
	r.Use(middleware.ErrorHandler())

	protected := r.Group("/protected")
	protected.Use(middleware.NewAuthMiddleware(validator).RequireAuth())
	protected.GET("", func(c *gin.Context) {
		actor, ok := middleware.GetActor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	return r
}

func TestRequireAuth(t *testing.T) {
	testCases := []struct {
		name         string
		authHeader   string
		setup        func(*usecasemock.MockTokenValidator)
		expectStatus int
		expectMsg    string
	}{
		{
			name:       "success: actor stored on the context",
			authHeader: "Bearer good-token",
			setup: func(m *usecasemock.MockTokenValidator) {
				m.EXPECT().ValidateToken("good-token").Return(int64(12), user.RoleTechnician, nil)
			},
			expectStatus: http.StatusOK,
		},
		{
			name:         "error: header missing",
			expectStatus: http.StatusUnauthorized,
			expectMsg:    "Access token required",
		},
		{
			name:         "error: not a bearer token",
			authHeader:   "Basic dXNlcjpwYXNz",
			expectStatus: http.StatusUnauthorized,
			expectMsg:    "Access token required",
		},
		{
			name:       "error: token rejected",
			authHeader: "Bearer expired",
			setup: func(m *usecasemock.MockTokenValidator) {
				m.EXPECT().ValidateToken("expired").Return(int64(0), user.Role(""), errors.New("token is expired"))
			},
			expectStatus: http.StatusUnauthorized,
			expectMsg:    "Invalid or expired token",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			validator := usecasemock.NewMockTokenValidator(ctrl)
			if tc.setup != nil {
				tc.setup(validator)
			}

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			newRouter(t, validator).ServeHTTP(w, req)

			if tc.expectMsg != "" {
				testhttp.AssertErrorResponse(t, w, tc.expectStatus, tc.expectMsg)
				return
			}
			assert.Equal(t, tc.expectStatus, w.Code)
			assert.JSONEq(t, `{"id":12,"role":"TECHNICIAN"}`, w.Body.String())
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router := newRouter(t, usecasemock.NewMockTokenValidator(gomock.NewController(t)))

	t.Run("success: caller supplied uuid is echoed", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-Request-ID", id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		testhttp.AssertHeaders(t, w, map[string]string{"X-Request-ID": id})
	})

	t.Run("success: other values are replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-Request-ID", "<script>")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
	})
}

func TestCustomRecovery(t *testing.T) {
	router := newRouter(t, usecasemock.NewMockTokenValidator(gomock.NewController(t)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	testhttp.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
	assert.NotContains(t, w.Body.String(), "boom")
}
