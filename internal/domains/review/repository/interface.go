package repository

import (
	"context"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/shared/listquery"
)

// =====================================================
// REVIEW REPOSITORY INTERFACE
// =====================================================

type ReviewRepository interface {
	// WithTx runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil.
	WithTx(ctx context.Context, fn func(repo ReviewRepository) error) error

	// ========================================
	// READS (reviewer populated)
	// ========================================

	// FindByID returns model.ErrReviewNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)

	// List applies the parsed list query and returns one page plus the total.
	List(ctx context.Context, q *listquery.Query) ([]model.Review, int64, error)

	// ExistsForUser reports whether userID already reviewed bookID.
	ExistsForUser(ctx context.Context, bookID, userID uuid.UUID) (bool, error)

	// ========================================
	// WRITES
	// ========================================

	// Create returns model.ErrAlreadyReviewed on the (book, user) unique index.
	Create(ctx context.Context, review *model.Review) error

	// Update writes rating and comment.
	Update(ctx context.Context, review *model.Review) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ========================================
	// PARENT BOOK
	// ========================================

	// LockBook reads the book row with FOR UPDATE. Only meaningful inside WithTx.
	// Returns model.ErrBookNotFound when absent.
	LockBook(ctx context.Context, bookID uuid.UUID) (*model.BookRef, error)

	// RecomputeBookRating aggregates the book's current ratings and writes
	// rating and review_count back to the book.
	RecomputeBookRating(ctx context.Context, bookID uuid.UUID) (model.RatingAggregate, error)
}
