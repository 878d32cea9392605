package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// ListEvents returns the events of the coming month.
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.eventService.Upcoming(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
