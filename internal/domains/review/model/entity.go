package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"booknook-backend/internal/shared/utils"
)

// Review is one user's rating of one book.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookID    uuid.UUID `json:"bookId" db:"book_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// User is the reviewer, populated on reads.
	User *Reviewer `json:"user,omitempty" db:"-"`
}

// Reviewer is the public slice of the reviewing user.
type Reviewer struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Avatar   *string   `json:"avatar"`
}

// BookRef is what review rules need to know about the reviewed book.
type BookRef struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
	Author   string
}

// AuthoredBy reports whether the acting user wrote the book, either by id
// or by the denormalized author name.
func (b BookRef) AuthoredBy(userID, username string) bool {
	return b.AuthorID.String() == userID || (username != "" && b.Author == username)
}

// RatingAggregate is the derived rating state of a book.
type RatingAggregate struct {
	Rating decimal.Decimal
	Count  int
}

// ComputeAggregate averages ratings, rounded half-up to one decimal.
// No ratings yields a zero aggregate.
func ComputeAggregate(ratings []int) RatingAggregate {
	if len(ratings) == 0 {
		return RatingAggregate{Rating: decimal.Zero, Count: 0}
	}

	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r)))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(ratings))))

	return RatingAggregate{
		Rating: utils.RoundRating(mean),
		Count:  len(ratings),
	}
}
