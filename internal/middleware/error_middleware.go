package middleware

import (
	"errors"
	"net/http"

	"pollstream/internal/services"
	"pollstream/internal/transport/httpdto"
	pollstream_errors "pollstream/pkg/errors"
	"pollstream/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders any error a handler recorded with c.Error. Version
// conflicts additionally carry the offending entity, its UUID and both
// versions so clients can refetch and retry.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}
		if c.Writer.Written() {
			return
		}

		status := services.HTTPStatus(err)
		code := services.ErrorCode(err)

		message := err.Error()
		if status == http.StatusInternalServerError {
			message = "internal error"
		}

		var vc *pollstream_errors.VersionConflictError
		if errors.As(err, &vc) {
			c.JSON(status, httpdto.NewErrorResponseWithDetails(message, code, map[string]any{
				"entity":            vc.Entity,
				"uuid":              vc.UUID.String(),
				"presented_version": vc.Presented,
				"current_version":   vc.Current,
			}))
			return
		}

		c.JSON(status, httpdto.NewErrorResponse(message, code))
	}
}
