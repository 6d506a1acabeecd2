package model

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"booknook-backend/internal/shared/response"
)

const MaxTitleLength = 100

// ========================================
// REQUEST DTOs
// ========================================

// CreateBookRequest is the body of POST /books. Author fields come from the
// caller and derived fields start at zero, so neither is accepted here.
type CreateBookRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CoverImage    string `json:"coverImage"`
	Genre         string `json:"genre"`
	PublishedDate string `json:"publishedDate"`
	Featured      bool   `json:"featured"`
}

func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Genre = strings.TrimSpace(r.Genre)
	r.CoverImage = strings.TrimSpace(r.CoverImage)
	r.PublishedDate = strings.TrimSpace(r.PublishedDate)
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("Please add a title"),
			validation.RuneLength(1, MaxTitleLength).Error("Title cannot be more than 100 characters"),
		),
		validation.Field(&r.Description, validation.Required.Error("Please add a description")),
		validation.Field(&r.CoverImage,
			validation.Required.Error("Please add a cover image URL"),
			is.URL.Error("Please add a valid cover image URL"),
		),
		validation.Field(&r.Genre, validation.Required.Error("Please add a genre")),
		validation.Field(&r.PublishedDate, validation.Required.Error("Please add a published date")),
	)
}

// UpdateBookRequest is the body of PUT /books/:id. Nil fields are left unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	CoverImage    *string `json:"coverImage"`
	Genre         *string `json:"genre"`
	PublishedDate *string `json:"publishedDate"`
	Featured      *bool   `json:"featured"`
}

func (r *UpdateBookRequest) Normalize() {
	for _, f := range []*string{r.Title, r.Genre, r.CoverImage, r.PublishedDate} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("Please add a title"),
			validation.RuneLength(1, MaxTitleLength).Error("Title cannot be more than 100 characters"),
		),
		validation.Field(&r.Description, validation.NilOrNotEmpty.Error("Please add a description")),
		validation.Field(&r.CoverImage,
			validation.NilOrNotEmpty.Error("Please add a cover image URL"),
			is.URL.Error("Please add a valid cover image URL"),
		),
		validation.Field(&r.Genre, validation.NilOrNotEmpty.Error("Please add a genre")),
		validation.Field(&r.PublishedDate, validation.NilOrNotEmpty.Error("Please add a published date")),
	)
}

// Apply copies the provided fields onto b.
func (r UpdateBookRequest) Apply(b *Book) {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.CoverImage != nil {
		b.CoverImage = *r.CoverImage
	}
	if r.Genre != nil {
		b.Genre = *r.Genre
	}
	if r.PublishedDate != nil {
		b.PublishedDate = *r.PublishedDate
	}
	if r.Featured != nil {
		b.Featured = *r.Featured
	}
}

// ========================================
// RESPONSE DTOs
// ========================================

type BookPagination struct {
	TotalBooks int64 `json:"totalBooks"`
	response.Pagination
}

// BookList is the data of GET /books. Books holds []Book, or the projected
// rows when select was given.
type BookList struct {
	Books      interface{}    `json:"books"`
	Pagination BookPagination `json:"pagination"`
}

// CachedBookList is BookList as read back from the cache.
type CachedBookList struct {
	Books      json.RawMessage `json:"books"`
	Pagination BookPagination  `json:"pagination"`
}

func (c CachedBookList) BookList() *BookList {
	return &BookList{Books: c.Books, Pagination: c.Pagination}
}
