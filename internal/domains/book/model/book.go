package model

import (
	"time"

	"github.com/google/uuid"

	reviewmodel "booknook-backend/internal/domains/review/model"
)

// Book represents the main book entity. Rating and ReviewCount are derived
// from the book's reviews and never written by clients.
type Book struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	AuthorID      uuid.UUID `json:"authorId" db:"author_id"`
	Author        string    `json:"author" db:"author"`
	Description   string    `json:"description" db:"description"`
	CoverImage    string    `json:"coverImage" db:"cover_image"`
	Genre         string    `json:"genre" db:"genre"`
	PublishedDate string    `json:"publishedDate" db:"published_date"`
	Featured      bool      `json:"featured" db:"featured"`
	Rating        float64   `json:"rating" db:"rating"`
	ReviewCount   int       `json:"reviewCount" db:"review_count"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// BookDetail is a book with its reviews, newest first.
type BookDetail struct {
	Book
	Reviews []reviewmodel.Review `json:"reviews"`
}
