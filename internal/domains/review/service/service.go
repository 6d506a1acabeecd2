package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/domains/review/repository"
	"booknook-backend/internal/shared"
	"booknook-backend/internal/shared/apperror"
	"booknook-backend/internal/shared/listquery"
	"booknook-backend/internal/shared/metrics"
	"booknook-backend/internal/shared/response"
	"booknook-backend/pkg/logger"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type reviewService struct {
	reviewRepo repository.ReviewRepository
	books      BookCacheInvalidator
}

// NewReviewService builds the service. books may be nil.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	books BookCacheInvalidator,
) ServiceInterface {
	return &reviewService{
		reviewRepo: reviewRepo,
		books:      books,
	}
}

// =====================================================
// READS
// =====================================================

func (s *reviewService) List(ctx context.Context, query url.Values) (*model.ReviewList, error) {
	if strings.TrimSpace(query.Get("bookId")) == "" {
		return nil, model.NewMissingBookIDError()
	}

	q, err := listquery.Parse(query, repository.Schema)
	if err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.List(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	projected, err := listquery.Project(reviews, q.Select)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &model.ReviewList{
		Reviews: projected,
		Pagination: model.ReviewPagination{
			TotalReviews: total,
			Pagination:   response.NewPagination(total, q.Page, q.Limit),
		},
	}, nil
}

func (s *reviewService) Get(ctx context.Context, id string) (*model.Review, error) {
	reviewID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.NewReviewNotFoundError(id)
	}
	return s.find(ctx, reviewID, id)
}

func (s *reviewService) find(ctx context.Context, reviewID uuid.UUID, rawID string) (*model.Review, error) {
	rv, err := s.reviewRepo.FindByID(ctx, reviewID)
	if errors.Is(err, model.ErrReviewNotFound) {
		return nil, model.NewReviewNotFoundError(rawID)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return rv, nil
}

// =====================================================
// CREATE REVIEW
// =====================================================

func (s *reviewService) Create(ctx context.Context, req model.CreateReviewRequest, identity shared.Identity) (*model.Review, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, model.NewBookNotFoundError(req.BookID)
	}
	userID, err := uuid.Parse(identity.ID)
	if err != nil {
		return nil, apperror.Unauthenticated("Not authorized to access this route")
	}

	review := &model.Review{
		ID:      uuid.New(),
		BookID:  bookID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	err = s.reviewRepo.WithTx(ctx, func(repo repository.ReviewRepository) error {
		book, err := repo.LockBook(ctx, bookID)
		if err != nil {
			return err
		}
		if book.AuthoredBy(identity.ID, identity.Username) {
			return model.NewOwnBookError()
		}

		exists, err := repo.ExistsForUser(ctx, bookID, userID)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrAlreadyReviewed
		}

		if err := repo.Create(ctx, review); err != nil {
			return err
		}
		_, err = repo.RecomputeBookRating(ctx, bookID)
		return err
	})
	if err != nil {
		return nil, mapWriteError(err, req.BookID)
	}

	s.afterMutation(ctx, "create", review)
	return s.find(ctx, review.ID, review.ID.String())
}

// =====================================================
// UPDATE / DELETE
// =====================================================

func (s *reviewService) Update(ctx context.Context, id string, req model.UpdateReviewRequest, identity shared.Identity) (*model.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(review, identity) {
		return nil, model.NewUpdateForbiddenError()
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}
	req.Apply(review)

	err = s.reviewRepo.WithTx(ctx, func(repo repository.ReviewRepository) error {
		if _, err := repo.LockBook(ctx, review.BookID); err != nil {
			return err
		}
		if err := repo.Update(ctx, review); err != nil {
			return err
		}
		_, err := repo.RecomputeBookRating(ctx, review.BookID)
		return err
	})
	if err != nil {
		return nil, mapWriteError(err, id)
	}

	s.afterMutation(ctx, "update", review)
	return s.find(ctx, review.ID, id)
}

func (s *reviewService) Delete(ctx context.Context, id string, identity shared.Identity) error {
	review, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(review, identity) {
		return model.NewDeleteForbiddenError()
	}

	// the review row is gone after Delete, so recompute against the captured book
	bookID := review.BookID

	err = s.reviewRepo.WithTx(ctx, func(repo repository.ReviewRepository) error {
		if _, err := repo.LockBook(ctx, bookID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, review.ID); err != nil {
			return err
		}
		_, err := repo.RecomputeBookRating(ctx, bookID)
		return err
	})
	if err != nil {
		return mapWriteError(err, id)
	}

	s.afterMutation(ctx, "delete", review)
	return nil
}

// =====================================================
// HELPERS
// =====================================================

// canModify: the reviewer or any admin.
func canModify(review *model.Review, identity shared.Identity) bool {
	return review.UserID.String() == identity.ID || identity.IsAdmin()
}

func (s *reviewService) afterMutation(ctx context.Context, op string, review *model.Review) {
	metrics.ReviewMutations.WithLabelValues(op).Inc()
	if s.books != nil {
		s.books.InvalidateBooks(ctx)
	}
	logger.Info("review "+op, map[string]interface{}{
		"review_id": review.ID.String(),
		"book_id":   review.BookID.String(),
	})
}

// mapWriteError translates repository errors from a write transaction.
// id names the entity that was looked up (book for create, review otherwise).
func mapWriteError(err error, id string) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, model.ErrBookNotFound):
		return model.NewBookNotFoundError(id)
	case errors.Is(err, model.ErrReviewNotFound):
		return model.NewReviewNotFoundError(id)
	case errors.Is(err, model.ErrAlreadyReviewed):
		return model.NewAlreadyReviewedError()
	default:
		return apperror.Internal(err)
	}
}
