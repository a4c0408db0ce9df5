package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"createkit-backend/internal/shared/auth"
	"createkit-backend/internal/shared/server/middleware"
	"createkit-backend/internal/shared/server/respond"
)

type meResponse struct {
	Success bool      `json:"success"`
	UserID  string    `json:"userId"`
	Plan    auth.Plan `json:"plan"`
}

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	p := middleware.PrincipalFromContext(c)
	if p.UserID == "" {
		respond.Message(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respond.OK(c, meResponse{Success: true, UserID: p.UserID, Plan: p.Plan})
}
