package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-audit-api/internal/models"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
	"github.com/noah-isme/degree-audit-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the validated session claims.
const ContextSessionKey = "sessionClaims"

type tokenValidator interface {
	Validate(token string) (*models.SessionClaims, error)
}

// SessionToken requires a bearer token issued for the session named by the
// :id route parameter.
func SessionToken(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if id := c.Param("id"); id != "" && id != claims.SessionID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token does not belong to this session"))
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, claims)
		c.Next()
	}
}
