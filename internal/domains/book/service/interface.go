package service

import (
	"context"
	"net/url"

	"booknook-backend/internal/domains/book/model"
	"booknook-backend/internal/shared"
)

// ServiceInterface - book business logic
type ServiceInterface interface {
	List(ctx context.Context, query url.Values) (*model.BookList, error)
	Get(ctx context.Context, id string) (*model.BookDetail, error)
	Create(ctx context.Context, req model.CreateBookRequest, identity shared.Identity) (*model.Book, error)
	Update(ctx context.Context, id string, req model.UpdateBookRequest) (*model.Book, error)

	// Delete is restricted to the book's owner.
	Delete(ctx context.Context, id string, identity shared.Identity) error

	ListMine(ctx context.Context, identity shared.Identity) ([]model.Book, error)

	// InvalidateBooks drops every cached list and detail entry.
	InvalidateBooks(ctx context.Context)
}
