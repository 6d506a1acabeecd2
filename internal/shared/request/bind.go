package request

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/shared/apperror"
)

// BindJSON decodes the body into req and reports success. Malformed JSON
// attaches a 400 to the context. An empty body leaves req zeroed so the
// service can say which fields are missing.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperror.Validation("Invalid request body").Wrap(err))
		return false
	}
	return true
}
