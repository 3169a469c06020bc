package middleware

import (
	"net/http"
	"strings"

	"extmedia/internal/auth"
	"extmedia/internal/logger"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth.claims"

const forbiddenMessage = "Sorry, you are not allowed to do that."

// RequireCapability admits only bearer tokens whose claims hold capability. A missing or invalid
// token answers 401, a valid token lacking the capability answers 403.
func RequireCapability(tokens *auth.TokenManager, capability string, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, "rest_forbidden", forbiddenMessage)
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			logger.Debug("Rejected token from %s: %v", c.ClientIP(), err)
			abort(c, http.StatusUnauthorized, "rest_forbidden", forbiddenMessage)
			return
		}
		if !claims.Can(capability) {
			abort(c, http.StatusForbidden, "rest_forbidden", forbiddenMessage)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireCapability.
func ClaimsFrom(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}
