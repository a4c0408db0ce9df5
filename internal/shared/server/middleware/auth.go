package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"createkit-backend/internal/shared/auth"
	"createkit-backend/internal/shared/server/respond"
)

const (
	userIDKey = "userId"
	planKey   = "plan"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Auth requires a valid bearer token and stores the caller in context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Message(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Message(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			respond.Message(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(userIDKey, principal.UserID)
		c.Set(planKey, principal.Plan)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// PrincipalFromContext returns the verified caller, defaulting the plan to free.
func PrincipalFromContext(c *gin.Context) auth.Principal {
	p := auth.Principal{UserID: UserIDFromContext(c), Plan: auth.PlanFree}
	if c == nil {
		return p
	}
	if val, ok := c.Get(planKey); ok {
		if plan, ok := val.(auth.Plan); ok {
			p.Plan = plan
		}
	}
	return p
}
