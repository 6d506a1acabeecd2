package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"booknook-backend/internal/shared/apperror"
	"booknook-backend/internal/shared/response"
)

// ErrorHandler renders the last error attached with c.Error as
// {success:false, error}. Handlers only attach errors and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := apperror.As(err)
		if !ok {
			appErr = apperror.Internal(err)
		}

		if appErr.Status >= http.StatusInternalServerError {
			log.Error().
				Err(appErr.Err).
				Str("request_id", c.GetString(requestIDKey)).
				Str("path", c.Request.URL.Path).
				Msg("Unhandled error")
		}

		response.ErrorResponse(c, appErr.Status, appErr.Message)
	}
}
