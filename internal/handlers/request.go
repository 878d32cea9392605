package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

// limitBody caps the request body at max bytes. Requests that announce a
// larger body are rejected at once and false is returned.
func limitBody(c *gin.Context, max int64) bool {
	if max <= 0 {
		return true
	}
	if c.Request.ContentLength > max {
		apperrors.HandleError(c, apperrors.TooLarge("upload", "file too large"))
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
	return true
}

// formFile returns the multipart file in field. A missing file yields a nil
// upload when optional is set. The caller closes the returned file.
func formFile(c *gin.Context, field string, optional bool) (*services.Upload, multipart.File, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			if optional {
				return nil, nil, nil
			}
			return nil, nil, apperrors.BadRequest("upload", field+" file is required")
		}
		return nil, nil, uploadError(err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &services.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        file,
	}, file, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.TooLarge("upload", "file too large")
	}
	return apperrors.BadRequest("upload", err.Error())
}

// intParam reads a numeric path parameter.
func intParam(c *gin.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, apperrors.BadRequest("request", name+" must be a number")
	}
	return n, nil
}
