package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"booknook-backend/internal/shared/response"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// =====================================================
// REQUEST DTOs
// =====================================================

// CreateReviewRequest is the body of POST /reviews. The reviewer is always
// the caller; a userId in the body is ignored.
type CreateReviewRequest struct {
	BookID  string `json:"bookId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (r *CreateReviewRequest) Normalize() {
	r.BookID = strings.TrimSpace(r.BookID)
	r.Comment = strings.TrimSpace(r.Comment)
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("Please provide a book ID")),
		validation.Field(&r.Rating, ratingRules(true)...),
		validation.Field(&r.Comment,
			validation.Required.Error("Please add a comment"),
			validation.RuneLength(0, MaxCommentLength).Error("Comment cannot be more than 2000 characters"),
		),
	)
}

// UpdateReviewRequest is the body of PUT /reviews/:id. Only rating and
// comment can change.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (r *UpdateReviewRequest) Normalize() {
	if r.Comment != nil {
		trimmed := strings.TrimSpace(*r.Comment)
		r.Comment = &trimmed
	}
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, ratingRules(false)...),
		validation.Field(&r.Comment,
			validation.NilOrNotEmpty.Error("Please add a comment"),
			validation.RuneLength(0, MaxCommentLength).Error("Comment cannot be more than 2000 characters"),
		),
	)
}

// Apply copies the provided fields onto rv.
func (r UpdateReviewRequest) Apply(rv *Review) {
	if r.Rating != nil {
		rv.Rating = *r.Rating
	}
	if r.Comment != nil {
		rv.Comment = *r.Comment
	}
}

func ratingRules(required bool) []validation.Rule {
	rules := []validation.Rule{validation.By(ratingInRange)}
	if required {
		rules = append([]validation.Rule{validation.Required.Error("Please add a rating")}, rules...)
	}
	return rules
}

// ratingInRange checks 1..5, treating an explicit 0 as out of range.
func ratingInRange(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	n, ok := v.(int)
	if !ok {
		return nil
	}
	switch {
	case n < MinRating:
		return validation.NewError("validation_rating_min", "Rating must be at least 1")
	case n > MaxRating:
		return validation.NewError("validation_rating_max", "Rating cannot be more than 5")
	}
	return nil
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type ReviewPagination struct {
	TotalReviews int64 `json:"totalReviews"`
	response.Pagination
}

// ReviewList is the data of GET /reviews. Reviews holds []Review, or the
// projected rows when select was given.
type ReviewList struct {
	Reviews    interface{}      `json:"reviews"`
	Pagination ReviewPagination `json:"pagination"`
}
