package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/user/model"
	"booknook-backend/internal/domains/user/repository"
	"booknook-backend/internal/shared"
	"booknook-backend/internal/shared/apperror"
	"booknook-backend/pkg/logger"
)

type userService struct {
	repo  repository.UserRepository
	books BookCacheInvalidator
}

// NewUserService builds the service. books may be nil.
func NewUserService(repo repository.UserRepository, books BookCacheInvalidator) UserService {
	return &userService{repo: repo, books: books}
}

// ========================================
// PROFILE
// ========================================

// GetProfile is open to the user themself and to admins.
func (s *userService) GetProfile(ctx context.Context, id string, identity shared.Identity) (*model.Profile, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.NewUserNotFoundError(id)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserLookupError(err, id)
	}

	if identity.ID != id && !identity.IsAdmin() {
		return nil, model.NewProfileAccessError()
	}

	list, err := s.repo.ReadingList(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return model.NewProfile(u, list), nil
}

// UpdateProfile is restricted to the user themself; admins get no override.
func (s *userService) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest, identity shared.Identity) (*model.Profile, error) {
	if identity.ID != id {
		return nil, model.NewProfileUpdateError()
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.NewUserNotFoundError(id)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserLookupError(err, id)
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	before := *u
	req.Apply(u)

	if u.Username != before.Username {
		taken, err := s.repo.UsernameExists(ctx, u.Username, userID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if taken {
			return nil, model.NewUsernameTakenError()
		}
	}
	if !strings.EqualFold(u.Email, before.Email) {
		taken, err := s.repo.EmailExists(ctx, u.Email, userID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if taken {
			return nil, model.NewEmailTakenError()
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, mapUserWriteError(err)
	}

	// Cached book details embed the reviewer's public fields.
	if s.books != nil && reviewerChanged(&before, u) {
		s.books.InvalidateBooks(ctx)
	}

	list, err := s.repo.ReadingList(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return model.NewProfile(u, list), nil
}

// ========================================
// READING LIST
// ========================================

func (s *userService) AddToReadingList(ctx context.Context, id string, req model.AddToReadingListRequest, identity shared.Identity) (*model.ReadingListItem, error) {
	if identity.ID != id {
		return nil, model.NewReadingListAccessError()
	}

	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, model.NewBookNotFoundError(req.BookID)
	}

	book, err := s.repo.FindBookSummary(ctx, bookID)
	if errors.Is(err, model.ErrBookNotFound) {
		return nil, model.NewBookNotFoundError(req.BookID)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.NewUserNotFoundError(id)
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return nil, mapUserLookupError(err, id)
	}

	addedAt, err := s.repo.AddToReadingList(ctx, userID, bookID)
	if errors.Is(err, model.ErrAlreadyInList) {
		return nil, model.NewAlreadyInListError()
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &model.ReadingListItem{
		BookID:     book.ID,
		Title:      book.Title,
		Author:     book.Author,
		CoverImage: book.CoverImage,
		AddedAt:    addedAt,
	}, nil
}

func (s *userService) RemoveFromReadingList(ctx context.Context, id, bookID string, identity shared.Identity) error {
	if identity.ID != id {
		return model.NewReadingListAccessError()
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return model.NewUserNotFoundError(id)
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return mapUserLookupError(err, id)
	}

	parsedBookID, err := uuid.Parse(bookID)
	if err != nil {
		return model.NewNotInListError()
	}

	err = s.repo.RemoveFromReadingList(ctx, userID, parsedBookID)
	if errors.Is(err, model.ErrNotInReadingList) {
		return model.NewNotInListError()
	}
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ========================================
// ADMIN
// ========================================

func (s *userService) PromoteToAdmin(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.Validation("Please provide an email address")
	}

	u, err := s.repo.UpdateRoleByEmail(ctx, email, shared.RoleAdmin)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("User with email %s not found", email))
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	logger.Info("user promoted to admin", map[string]interface{}{"user_id": u.ID.String(), "email": u.Email})
	return u, nil
}

func reviewerChanged(before, after *model.User) bool {
	return before.Username != after.Username ||
		before.Name != after.Name ||
		!equalStringPtr(before.Avatar, after.Avatar)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
