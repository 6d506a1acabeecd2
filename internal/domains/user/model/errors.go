package model

import (
	"errors"
	"fmt"

	"booknook-backend/internal/shared/apperror"
)

// Repository-level errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrBookNotFound     = errors.New("book not found")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrAlreadyInList    = errors.New("book already in reading list")
	ErrNotInReadingList = errors.New("book not in reading list")
)

// ========================================
// CLIENT-FACING ERRORS
// ========================================

func NewUserNotFoundError(id string) *apperror.AppError {
	return apperror.NotFound(fmt.Sprintf("User not found with id of %s", id))
}

func NewBookNotFoundError(id string) *apperror.AppError {
	return apperror.NotFound(fmt.Sprintf("Book not found with id of %s", id))
}

func NewUsernameTakenError() *apperror.AppError {
	return apperror.Validation("Username is already taken")
}

func NewEmailTakenError() *apperror.AppError {
	return apperror.Validation("Email is already registered")
}

func NewInvalidCredentialsError() *apperror.AppError {
	return apperror.Unauthenticated("Invalid credentials")
}

func NewMissingCredentialsError() *apperror.AppError {
	return apperror.Validation("Please provide an email and password")
}

func NewProfileAccessError() *apperror.AppError {
	return apperror.NotOwner("Not authorized to access this profile")
}

func NewProfileUpdateError() *apperror.AppError {
	return apperror.NotOwner("Not authorized to update this profile")
}

func NewReadingListAccessError() *apperror.AppError {
	return apperror.NotOwner("Not authorized to update this reading list")
}

func NewAlreadyInListError() *apperror.AppError {
	return apperror.Validation("Book already in reading list")
}

func NewNotInListError() *apperror.AppError {
	return apperror.NotFound("Book not found in reading list")
}
