package creations

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"createkit-backend/internal/shared/server/middleware"
	"createkit-backend/internal/shared/server/respond"
)

const (
	msgFetchFailed   = "An error occurred while fetching creations."
	msgLikeFailed    = "Failed to toggle like state"
	msgPublishFailed = "Failed to toggle publish state"
	msgPublishInput  = "creationId and publish(boolean) are required"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the user routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/get-user-creations", h.listMine)
	rg.GET("/get-published-creations", h.listPublished)
	rg.POST("/toggle-like-creation/:id", h.toggleLike)
	rg.POST("/toggle-publish-creation", h.togglePublish)
}

func (h *Handler) listMine(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	items, err := h.Svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respond.FailMessage(c, err, msgFetchFailed)
		return
	}
	respond.OK(c, listResponse{Success: true, Creations: toResponses(items)})
}

func (h *Handler) listPublished(c *gin.Context) {
	items, err := h.Svc.ListPublished(c.Request.Context())
	if err != nil {
		respond.FailMessage(c, err, msgFetchFailed)
		return
	}
	respond.OK(c, listResponse{Success: true, Creations: toResponses(items)})
}

func (h *Handler) toggleLike(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	creationID := strings.TrimSpace(c.Param("id"))
	c.Set("creationId", creationID)

	res, err := h.Svc.ToggleLike(c.Request.Context(), creationID, userID)
	if err != nil {
		respond.FailMessage(c, err, msgLikeFailed)
		return
	}
	respond.OK(c, toggleLikeResponse{Success: true, Message: res.Message})
}

func (h *Handler) togglePublish(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req togglePublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Message(c, http.StatusBadRequest, msgPublishInput)
		return
	}
	req.CreationID = strings.TrimSpace(req.CreationID)
	if req.CreationID == "" {
		respond.Message(c, http.StatusBadRequest, msgPublishInput)
		return
	}
	c.Set("creationId", req.CreationID)

	stored, err := h.Svc.TogglePublish(c.Request.Context(), req.CreationID, userID, req.Publish)
	if err != nil {
		respond.FailMessage(c, err, msgPublishFailed)
		return
	}
	respond.OK(c, togglePublishResponse{Success: true, CreationID: req.CreationID, Publish: stored})
}
