package apperrors

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// Debug controls whether internal error messages reach the client.
var Debug = false

// HandleError renders err as JSON and aborts the request.
func HandleError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal(err)
		if Debug {
			appErr.Details = err.Error()
		}
	}

	if appErr.HTTPCode >= 500 {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleBindError turns a gin binding failure into a field -> tag map.
func HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		HandleError(c, Validation(fields))
		return
	}
	HandleError(c, BadRequest("request", err.Error()))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}
