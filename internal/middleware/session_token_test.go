package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/internal/service"
)

func sessionRouter(t *testing.T) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(service.TokenConfig{Secret: "middleware-secret", TTL: time.Hour})
	r := gin.New()
	r.GET("/sessions/:id", SessionToken(tokens), func(c *gin.Context) {
		claims, ok := c.Get(ContextSessionKey)
		require.True(t, ok)
		c.String(http.StatusOK, claims.(*models.SessionClaims).SessionID)
	})
	return r, tokens
}

func TestSessionTokenAllowsOwner(t *testing.T) {
	r, tokens := sessionRouter(t)
	token, _, err := tokens.Issue("abc")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/sessions/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
}

func TestSessionTokenRejects(t *testing.T) {
	r, tokens := sessionRouter(t)
	other, _, err := tokens.Issue("other")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "malformed", header: "Token abc", status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "foreign session", header: "Bearer " + other, status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sessions/abc", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
