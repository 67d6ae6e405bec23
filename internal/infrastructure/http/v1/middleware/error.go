package middleware

import (
	"github.com/gin-gonic/gin"

	"gatehouse/internal/core/apperror"
	"gatehouse/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details. The
// OWNERSHIP_REQUIRED code is an internal caller obligation, never a
// user-facing outcome, so it is rendered as a plain forbidden response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check for errors
		if len(c.Errors) == 0 {
			return
		}

		// Get last error
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		// Try to extract AppError
		if appErr, ok := apperror.AsAppError(err); ok {
			// Log internal error if present
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			code := appErr.Code
			message := appErr.Message
			details := appErr.Details
			if code == apperror.CodeOwnershipRequired {
				code = apperror.CodeForbidden
				message = "forbidden"
				details = nil
			}

			c.JSON(appErr.HTTPStatus, gin.H{
				"code":    code,
				"message": message,
				"details": details,
			})
			return
		}

		// Unknown error - log and return generic message
		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)

		c.JSON(500, gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString("request_id"),
			},
		})
	}
}
