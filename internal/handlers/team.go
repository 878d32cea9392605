package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListMembers returns the team without the caller, filtered by ?q= when set.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	members, err := h.teamService.Search(c.Request.Context(), middleware.GetUserID(c), c.Query("q"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// UpdateRole sets a member's role.
func (h *TeamHandler) UpdateRole(c *gin.Context) {
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	userID := c.Param("userId")
	if err := h.teamService.UpdateRole(c.Request.Context(), userID, req.Role); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": userID, "role": req.Role})
}
