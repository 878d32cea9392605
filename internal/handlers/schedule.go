package handlers

import (
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

// ScheduleHandler serves the monthly schedule files ("horário") and the
// schedule change log.
type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	maxUpload       int64
}

func NewScheduleHandler(scheduleService *services.ScheduleService, maxUpload int64) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, maxUpload: maxUpload}
}

func yearMonth(c *gin.Context) (int, int, bool) {
	year, err := intParam(c, "year")
	if err != nil {
		apperrors.HandleError(c, err)
		return 0, 0, false
	}
	month, err := intParam(c, "month")
	if err != nil {
		apperrors.HandleError(c, err)
		return 0, 0, false
	}
	return year, month, true
}

// GetSchedule describes the latest file uploaded for the month.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}

	file, err := h.scheduleService.Latest(c.Request.Context(), year, month)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// DownloadSchedule streams the latest file of the month.
func (h *ScheduleHandler) DownloadSchedule(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}

	body, file, err := h.scheduleService.Open(c.Request.Context(), year, month)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(file.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := file.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentType, body, map[string]string{
		"Content-Disposition": "inline; filename=" + strconv.Quote(file.Name),
	})
}

// UploadSchedule stores a new file for the month from the "file" form field.
func (h *ScheduleHandler) UploadSchedule(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	if !limitBody(c, h.maxUpload) {
		return
	}

	upload, file, err := formFile(c, "file", false)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	defer file.Close()

	sf, err := h.scheduleService.Upload(c.Request.Context(), year, month, upload)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sf)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), year, month); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListChanges returns the schedule change log, newest first.
func (h *ScheduleHandler) ListChanges(c *gin.Context) {
	changes, err := h.scheduleService.Changes(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": changes})
}

func (h *ScheduleHandler) CreateChange(c *gin.Context) {
	var req models.CreateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	change, err := h.scheduleService.CreateChange(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, change)
}

func (h *ScheduleHandler) DeleteChange(c *gin.Context) {
	if err := h.scheduleService.DeleteChange(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
