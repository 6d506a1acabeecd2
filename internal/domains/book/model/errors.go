package model

import (
	"errors"
	"fmt"

	"booknook-backend/internal/shared/apperror"
)

var ErrBookNotFound = errors.New("book not found")

func NewBookNotFoundError(id string) *apperror.AppError {
	return apperror.NotFound(fmt.Sprintf("Book not found with id of %s", id))
}

func NewDeleteForbiddenError() *apperror.AppError {
	return apperror.Forbidden("Not authorized to delete this book")
}
