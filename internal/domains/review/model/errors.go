package model

import (
	"errors"
	"fmt"

	"booknook-backend/internal/shared/apperror"
)

// Repository-level errors
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrAlreadyReviewed = errors.New("already reviewed this book")
)

// ========================================
// CLIENT-FACING ERRORS
// ========================================

func NewReviewNotFoundError(id string) *apperror.AppError {
	return apperror.NotFound(fmt.Sprintf("Review not found with id of %s", id))
}

func NewBookNotFoundError(id string) *apperror.AppError {
	return apperror.NotFound(fmt.Sprintf("Book not found with id of %s", id))
}

func NewMissingBookIDError() *apperror.AppError {
	return apperror.Validation("Please provide a book ID")
}

func NewOwnBookError() *apperror.AppError {
	return apperror.Validation("Authors cannot review their own books")
}

func NewAlreadyReviewedError() *apperror.AppError {
	return apperror.Validation("You have already reviewed this book")
}

func NewUpdateForbiddenError() *apperror.AppError {
	return apperror.NotOwner("Not authorized to update this review")
}

func NewDeleteForbiddenError() *apperror.AppError {
	return apperror.NotOwner("Not authorized to delete this review")
}
