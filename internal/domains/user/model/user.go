package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"booknook-backend/internal/shared"
)

// User maps 1:1 to the users table.
type User struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Username     string          `json:"username" db:"username"`
	Email        string          `json:"email" db:"email"`
	PasswordHash string          `json:"-" db:"password_hash"` // never exposed
	Name         string          `json:"name" db:"name"`
	Bio          *string         `json:"bio,omitempty" db:"bio"`
	Avatar       *string         `json:"avatar,omitempty" db:"avatar"`
	Role         string          `json:"role" db:"role"`
	Preferences  json.RawMessage `json:"preferences" db:"preferences"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// Identity is the request-scoped view of the user.
func (u *User) Identity() shared.Identity {
	return shared.Identity{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}
}

// BookSummary is the slice of a book shown inside a reading list.
type BookSummary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	CoverImage string    `json:"coverImage"`
}

// ReadingListEntry references a book by id. Book is nil when the
// referenced book no longer exists.
type ReadingListEntry struct {
	BookID  uuid.UUID    `json:"bookId"`
	AddedAt time.Time    `json:"addedAt"`
	Book    *BookSummary `json:"book"`
}

// Profile is the public shape of a user, reading list expanded.
type Profile struct {
	ID          uuid.UUID          `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Bio         *string            `json:"bio"`
	Avatar      *string            `json:"avatar"`
	Role        string             `json:"role"`
	Preferences json.RawMessage    `json:"preferences"`
	ReadingList []ReadingListEntry `json:"readingList"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func NewProfile(u *User, readingList []ReadingListEntry) *Profile {
	if readingList == nil {
		readingList = []ReadingListEntry{}
	}
	prefs := u.Preferences
	if len(prefs) == 0 {
		prefs = json.RawMessage(`{}`)
	}
	return &Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name,
		Bio:         u.Bio,
		Avatar:      u.Avatar,
		Role:        u.Role,
		Preferences: prefs,
		ReadingList: readingList,
		CreatedAt:   u.CreatedAt,
	}
}
