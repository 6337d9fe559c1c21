package pipeline

import (
	"net/http"
	"strconv"

	apperrors "shipshape/pkg/errors"

	"github.com/gin-gonic/gin"
)

// WriteError is the single terminal error translator: every stage and
// handler failure funnels through here, so clients always see one of two
// response shapes and never a raw internal error.
func WriteError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.NewInternal("Internal server error")
	}

	// Rate-limit rejections keep the legacy flat body shape; everything
	// else uses the structured envelope.
	if appErr.Code == apperrors.ErrCodeRateLimit {
		if retry, ok := appErr.Context["retry_after_seconds"].(int); ok {
			c.Header("Retry-After", strconv.Itoa(retry))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": appErr.Message})
		return
	}

	c.JSON(appErr.HTTPStatus, gin.H{
		"error": gin.H{
			"message":    appErr.Message,
			"statusCode": appErr.HTTPStatus,
		},
	})
}
