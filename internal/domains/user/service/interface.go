package service

import (
	"context"

	"booknook-backend/internal/domains/user/model"
	"booknook-backend/internal/shared"
	"booknook-backend/pkg/jwt"
)

// =====================================================
// AUTH SERVICE
// =====================================================

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)

	// Me returns the acting user's profile.
	Me(ctx context.Context, identity shared.Identity) (*model.Profile, error)

	// LoadIdentity backs the request gate: it resolves a token subject
	// to the current user, so role changes apply to existing tokens.
	LoadIdentity(ctx context.Context, userID string) (*shared.Identity, error)
}

// TokenIssuer signs session tokens. Implemented by *jwt.Manager.
type TokenIssuer interface {
	GenerateTokenPair(userID, role string) (*jwt.TokenPair, error)
}

// =====================================================
// USER SERVICE
// =====================================================

type UserService interface {
	GetProfile(ctx context.Context, id string, identity shared.Identity) (*model.Profile, error)
	UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest, identity shared.Identity) (*model.Profile, error)

	AddToReadingList(ctx context.Context, id string, req model.AddToReadingListRequest, identity shared.Identity) (*model.ReadingListItem, error)
	RemoveFromReadingList(ctx context.Context, id, bookID string, identity shared.Identity) error

	// PromoteToAdmin is used by the makeadmin command.
	PromoteToAdmin(ctx context.Context, email string) (*model.User, error)
}

// BookCacheInvalidator drops cached book details, which embed reviewer
// names and avatars.
type BookCacheInvalidator interface {
	InvalidateBooks(ctx context.Context)
}
