package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"createkit-backend/internal/shared/server/respond"
	"createkit-backend/internal/shared/telemetry"
)

const msgUnexpected = "Unexpected server error"

// Recovery turns panics into the 500 failure envelope. Panics inside
// /api/user routes use the message field like the rest of that group.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		telemetry.Error("request.panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"user_id":    UserIDFromContext(c),
			"panic":      rec,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
		if messageEnvelope(c) {
			respond.Message(c, http.StatusInternalServerError, msgUnexpected)
			return
		}
		respond.Error(c, http.StatusInternalServerError, msgUnexpected)
	})
}

func messageEnvelope(c *gin.Context) bool {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	return strings.HasPrefix(path, "/api/user/")
}
