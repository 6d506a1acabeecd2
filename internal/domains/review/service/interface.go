package service

import (
	"context"
	"net/url"

	"booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/shared"
)

// =====================================================
// REVIEW SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// List requires a bookId filter.
	List(ctx context.Context, query url.Values) (*model.ReviewList, error)

	Get(ctx context.Context, id string) (*model.Review, error)

	// Create, Update and Delete recompute the parent book's rating in the
	// same transaction as the review write.
	Create(ctx context.Context, req model.CreateReviewRequest, identity shared.Identity) (*model.Review, error)
	Update(ctx context.Context, id string, req model.UpdateReviewRequest, identity shared.Identity) (*model.Review, error)
	Delete(ctx context.Context, id string, identity shared.Identity) error
}

// BookCacheInvalidator drops cached book reads after a rating change.
type BookCacheInvalidator interface {
	InvalidateBooks(ctx context.Context)
}
