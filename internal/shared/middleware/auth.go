package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/shared"
	"booknook-backend/internal/shared/apperror"
	"booknook-backend/pkg/jwt"
	"booknook-backend/pkg/logger"
)

const (
	identityKey = "identity"

	msgNotAuthorized = "Not authorized to access this route"
)

// TokenValidator verifies a bearer token. Implemented by *jwt.Manager.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// IdentityLoader resolves the user behind a token.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID string) (*shared.Identity, error)
}

// Protect requires a valid bearer token whose user still exists and
// attaches that user's identity to the context.
func Protect(tokens TokenValidator, users IdentityLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWith(c, apperror.Unauthenticated(msgNotAuthorized))
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			abortWith(c, apperror.Unauthenticated(msgNotAuthorized).Wrap(err))
			return
		}

		identity, err := users.LoadIdentity(c.Request.Context(), claims.UserID)
		if err != nil {
			if !apperror.IsKind(err, apperror.KindNotFound) {
				logger.Error("failed to load identity", err)
			}
			abortWith(c, apperror.Unauthenticated(msgNotAuthorized).Wrap(err))
			return
		}

		SetIdentity(c, *identity)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// SetIdentity stores the acting user on the request.
func SetIdentity(c *gin.Context, identity shared.Identity) {
	c.Set(identityKey, identity)
}

// CurrentIdentity returns the acting user set by Protect.
func CurrentIdentity(c *gin.Context) (shared.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return shared.Identity{}, false
	}
	identity, ok := v.(shared.Identity)
	return identity, ok
}

// MustIdentity is CurrentIdentity for handlers mounted behind Protect.
// It attaches an auth error and returns false when no identity is present.
func MustIdentity(c *gin.Context) (shared.Identity, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		_ = c.Error(apperror.Unauthenticated(msgNotAuthorized))
	}
	return identity, ok
}
