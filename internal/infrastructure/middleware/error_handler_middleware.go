package middleware

import (
	"shipshape/internal/infrastructure/pipeline"
	apperrors "shipshape/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler drains errors handlers attach via c.Error through the same
// terminal translator the pipeline uses, so all failure paths share one
// response shape.
func ErrorHandler(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if appErr := apperrors.GetAppError(err); appErr != nil {
			logger.Errorw("request failed",
				"code", appErr.Code,
				"status", appErr.HTTPStatus,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"context", appErr.Context,
				"error", appErr,
			)
		} else {
			logger.Errorw("unhandled error",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", err,
			)
		}

		if !c.Writer.Written() {
			pipeline.WriteError(c, err)
		}
	}
}

// Recovery converts panics into a structured 500 response.
func Recovery(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				pipeline.WriteError(c, apperrors.NewInternal("Internal server error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}
