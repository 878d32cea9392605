package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

// HomeHandler serves the home screen and its activity notifications.
type HomeHandler struct {
	activityService *services.ActivityService
}

func NewHomeHandler(activityService *services.ActivityService) *HomeHandler {
	return &HomeHandler{activityService: activityService}
}

// GetHome returns the caller's profile and the lines of activity they
// have not seen yet.
func (h *HomeHandler) GetHome(c *gin.Context) {
	home, err := h.activityService.Home(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, home)
}

// MarkSeen is called when the user leaves the home screen. It never fails.
func (h *HomeHandler) MarkSeen(c *gin.Context) {
	h.activityService.MarkSeen(c.Request.Context(), middleware.GetUserID(c))
	c.Status(http.StatusNoContent)
}
