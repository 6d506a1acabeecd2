package repository

import (
	"context"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/book/model"
	reviewmodel "booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/shared/listquery"
)

// RepositoryInterface - book data access
type RepositoryInterface interface {
	// List applies the parsed list query and returns one page plus the total.
	List(ctx context.Context, q *listquery.Query) ([]model.Book, int64, error)

	// FindByID returns model.ErrBookNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// ListReviews returns the book's reviews with reviewers, newest first.
	ListReviews(ctx context.Context, bookID uuid.UUID) ([]reviewmodel.Review, error)

	// ListByAuthor returns books owned by authorID, newest first.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Book, error)

	Create(ctx context.Context, book *model.Book) error

	// Update writes the client-editable columns.
	Update(ctx context.Context, book *model.Book) error

	// DeleteWithReviews removes the book's reviews and then the book in one transaction.
	DeleteWithReviews(ctx context.Context, id uuid.UUID) error
}
