package transport

import (
	"errors"
	"net/http"

	"storefront-be/internal/apperr"
	"storefront-be/internal/auth"
	"storefront-be/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInvalidID:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err's kind. Internal failures are
// logged with detail and answered with a generic message.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("layer", "transport"),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
