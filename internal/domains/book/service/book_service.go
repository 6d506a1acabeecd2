package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/book/model"
	"booknook-backend/internal/domains/book/repository"
	"booknook-backend/internal/shared"
	"booknook-backend/internal/shared/apperror"
	"booknook-backend/internal/shared/listquery"
	"booknook-backend/internal/shared/metrics"
	"booknook-backend/internal/shared/response"
	"booknook-backend/pkg/cache"
	"booknook-backend/pkg/logger"
)

const (
	cacheKeyList    = "books:list:"
	cacheKeyDetail  = "books:detail:"
	cachePatternAll = "books:*"
)

// BookService - Implements ServiceInterface
type BookService struct {
	repo     repository.RepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewService - Constructor with DI. cache may be nil.
func NewService(repo repository.RepositoryInterface, cache cache.Cache, cacheTTL time.Duration) ServiceInterface {
	return &BookService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// ========================================
// LIST / DETAIL
// ========================================

func (s *BookService) List(ctx context.Context, query url.Values) (*model.BookList, error) {
	q, err := listquery.Parse(query, repository.Schema)
	if err != nil {
		return nil, err
	}

	cacheKey := cacheKeyList + listquery.CacheKey(query)
	var cached model.CachedBookList
	if s.readCache(ctx, cacheKey, &cached) {
		return cached.BookList(), nil
	}

	books, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if books == nil {
		books = []model.Book{}
	}

	projected, err := listquery.Project(books, q.Select)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	result := &model.BookList{
		Books: projected,
		Pagination: model.BookPagination{
			TotalBooks: total,
			Pagination: response.NewPagination(total, q.Page, q.Limit),
		},
	}
	s.writeCache(ctx, cacheKey, result)
	return result, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*model.BookDetail, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.NewBookNotFoundError(id)
	}

	cacheKey := cacheKeyDetail + bookID.String()
	var cached model.BookDetail
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	book, err := s.find(ctx, bookID, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListReviews(ctx, bookID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	detail := &model.BookDetail{Book: *book, Reviews: reviews}
	s.writeCache(ctx, cacheKey, detail)
	return detail, nil
}

func (s *BookService) ListMine(ctx context.Context, identity shared.Identity) ([]model.Book, error) {
	authorID, err := uuid.Parse(identity.ID)
	if err != nil {
		return []model.Book{}, nil
	}

	books, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// ========================================
// WRITES
// ========================================

func (s *BookService) Create(ctx context.Context, req model.CreateBookRequest, identity shared.Identity) (*model.Book, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	authorID, err := uuid.Parse(identity.ID)
	if err != nil {
		return nil, apperror.Unauthenticated("Not authorized to access this route")
	}

	author := identity.Username
	if author == "" {
		author = identity.Name
	}

	book := &model.Book{
		ID:            uuid.New(),
		Title:         req.Title,
		AuthorID:      authorID,
		Author:        author,
		Description:   req.Description,
		CoverImage:    req.CoverImage,
		Genre:         req.Genre,
		PublishedDate: req.PublishedDate,
		Featured:      req.Featured,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, apperror.Internal(err)
	}

	s.InvalidateBooks(ctx)
	logger.Info("book created", map[string]interface{}{"book_id": book.ID.String(), "author_id": identity.ID})
	return book, nil
}

func (s *BookService) Update(ctx context.Context, id string, req model.UpdateBookRequest) (*model.Book, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.NewBookNotFoundError(id)
	}

	book, err := s.find(ctx, bookID, id)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}
	req.Apply(book)

	if err := s.repo.Update(ctx, book); err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, apperror.Internal(err)
	}

	s.InvalidateBooks(ctx)
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, id string, identity shared.Identity) error {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return model.NewBookNotFoundError(id)
	}

	book, err := s.find(ctx, bookID, id)
	if err != nil {
		return err
	}
	if book.AuthorID.String() != identity.ID {
		return model.NewDeleteForbiddenError()
	}

	if err := s.repo.DeleteWithReviews(ctx, bookID); err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return model.NewBookNotFoundError(id)
		}
		return apperror.Internal(err)
	}

	s.InvalidateBooks(ctx)
	logger.Info("book deleted", map[string]interface{}{"book_id": id, "author_id": identity.ID})
	return nil
}

// ========================================
// CACHE
// ========================================

func (s *BookService) InvalidateBooks(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cachePatternAll); err != nil {
		logger.Warn("failed to invalidate book cache", map[string]interface{}{"error": err.Error()})
	}
}

// readCache reports a hit. Cache errors count as misses.
func (s *BookService) readCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}

	found, err := s.cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("books", "error").Inc()
		logger.Warn("book cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	case found:
		metrics.CacheLookups.WithLabelValues("books", "hit").Inc()
		return true
	default:
		metrics.CacheLookups.WithLabelValues("books", "miss").Inc()
		return false
	}
}

func (s *BookService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logger.Warn("book cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// ========================================
// HELPERS
// ========================================

func (s *BookService) find(ctx context.Context, bookID uuid.UUID, rawID string) (*model.Book, error) {
	book, err := s.repo.FindByID(ctx, bookID)
	if errors.Is(err, model.ErrBookNotFound) {
		return nil, model.NewBookNotFoundError(rawID)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return book, nil
}
