package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
)

// RespondWithError writes the JSON error envelope for err. AppErrors keep
// their status, code and message; anything else is logged and reported as a
// generic internal error.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Named("http").Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Named("http").Errorw("app error",
			"code", appErr.Code,
			"message", appErr.Message,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// ErrorHandler returns a Gin middleware that converts errors attached with
// c.Error into the JSON error envelope when no response was written yet.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondWithError(c, c.Errors.Last().Err)
	}
}

// NotFound answers unknown routes with the JSON error envelope.
func NotFound(c *gin.Context) {
	RespondWithError(c, apperrors.WithMessage(apperrors.ErrNotFound, "No route for "+c.Request.Method+" "+c.Request.URL.Path))
}

// MethodNotAllowed answers known routes requested with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	RespondWithError(c, &apperrors.AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method " + c.Request.Method + " is not allowed on " + c.Request.URL.Path,
		StatusCode: http.StatusMethodNotAllowed,
	})
}
