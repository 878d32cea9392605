package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

const maxChatPage = 500

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetMessages returns the team conversation, oldest first. With ?limit=
// only the most recent messages are returned. Either way the caller has
// now read the whole chat.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= maxChatPage {
			limit = l
		}
	}

	messages, err := h.chatService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	total := len(messages)
	if limit > 0 && total > limit {
		messages = messages[total-limit:]
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
	})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), middleware.GetUserID(c), req.Text)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
