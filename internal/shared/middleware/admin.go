package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/shared/apperror"
)

// Authorize restricts a route to the given roles. Mount after Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abortWith(c, apperror.Unauthenticated(msgNotAuthorized))
			return
		}

		if _, ok := allowed[identity.Role]; !ok {
			abortWith(c, apperror.Forbidden(
				fmt.Sprintf("User role %s is not authorized to access this route", identity.Role),
			))
			return
		}

		c.Next()
	}
}
