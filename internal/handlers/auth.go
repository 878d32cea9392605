package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login authenticates with email and password
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout revokes the token the request was made with.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		apperrors.HandleError(c, apperrors.Unauthorized("unauthorized"))
		return
	}

	h.authService.Logout(session)
	c.Status(http.StatusNoContent)
}

// RefreshToken trades the current token for a fresh one.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		apperrors.HandleError(c, apperrors.Unauthorized("unauthorized"))
		return
	}

	response, err := h.authService.Refresh(c.Request.Context(), session)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateFCMToken updates the user's FCM token
func (h *AuthHandler) UpdateFCMToken(c *gin.Context) {
	var req models.UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	if err := h.authService.UpdateFCMToken(c.Request.Context(), middleware.GetUserID(c), req.FCMToken); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated successfully"})
}
