package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/user/model"
)

// UserRepository is the data access contract for users and their reading lists.
type UserRepository interface {
	// ========================================
	// USERS
	// ========================================

	// Create inserts u and fills its timestamps.
	// Returns model.ErrUsernameTaken / model.ErrEmailTaken on unique violations.
	Create(ctx context.Context, u *model.User) error

	// FindByID is cache-aside: Redis first, then Postgres.
	// Returns model.ErrUserNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// FindByEmail includes the password hash and bypasses the cache.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// UsernameExists / EmailExists ignore the user with excludeID.
	UsernameExists(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	// Update writes the profile columns and evicts the cached user.
	Update(ctx context.Context, u *model.User) error

	// UpdateRoleByEmail changes a user's role and evicts the cached user.
	UpdateRoleByEmail(ctx context.Context, email, role string) (*model.User, error)

	// ========================================
	// READING LIST
	// ========================================

	// ReadingList returns entries in insertion order; entries whose book
	// is gone have a nil Book.
	ReadingList(ctx context.Context, userID uuid.UUID) ([]model.ReadingListEntry, error)

	// FindBookSummary returns model.ErrBookNotFound when the book does not exist.
	FindBookSummary(ctx context.Context, bookID uuid.UUID) (*model.BookSummary, error)

	// AddToReadingList returns model.ErrAlreadyInList on duplicates.
	AddToReadingList(ctx context.Context, userID, bookID uuid.UUID) (time.Time, error)

	// RemoveFromReadingList returns model.ErrNotInReadingList when absent.
	RemoveFromReadingList(ctx context.Context, userID, bookID uuid.UUID) error
}
