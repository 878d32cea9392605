package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

type NewsHandler struct {
	newsService *services.NewsService
	maxUpload   int64
}

func NewNewsHandler(newsService *services.NewsService, maxUpload int64) *NewsHandler {
	return &NewsHandler{newsService: newsService, maxUpload: maxUpload}
}

// ListNews returns every news item, newest first.
func (h *NewsHandler) ListNews(c *gin.Context) {
	news, err := h.newsService.List(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"news": news})
}

// CreateNews takes a multipart form with title, description and an
// optional "image" file.
func (h *NewsHandler) CreateNews(c *gin.Context) {
	if !limitBody(c, h.maxUpload) {
		return
	}

	var req models.CreateNewsRequest
	if err := c.ShouldBind(&req); err != nil {
		if uerr := uploadError(err); apperrors.HasCode(uerr, apperrors.CodeTooLarge) {
			apperrors.HandleError(c, uerr)
			return
		}
		apperrors.HandleBindError(c, err)
		return
	}

	image, file, err := formFile(c, "image", true)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	news, err := h.newsService.Create(c.Request.Context(), middleware.GetUserID(c), &req, image)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, news)
}

// DeleteNews removes a news item and its image.
func (h *NewsHandler) DeleteNews(c *gin.Context) {
	if err := h.newsService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
