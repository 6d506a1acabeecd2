package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("Please add a username"),
			validation.Length(3, 30),
		),
		validation.Field(&r.Email,
			validation.Required.Error("Please add an email"),
			is.EmailFormat.Error("Please add a valid email"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("Please add a password"),
			validation.By(maxBytes(72)),
		),
		validation.Field(&r.Name,
			validation.Required.Error("Please add a name"),
			validation.Length(1, 50),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID       uuid.UUID `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
}

// ========================================
// PROFILE DTOs
// ========================================

// UpdateProfileRequest carries only the fields a user may change.
// Nil means "leave as is".
type UpdateProfileRequest struct {
	Username    *string          `json:"username"`
	Name        *string          `json:"name"`
	Email       *string          `json:"email"`
	Bio         *string          `json:"bio"`
	Avatar      *string          `json:"avatar"`
	Preferences *json.RawMessage `json:"preferences"`
}

// Normalize trims the identity fields so blank values fail validation.
func (r *UpdateProfileRequest) Normalize() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(r.Username)
	trim(r.Name)
	trim(r.Email)
	if r.Email != nil {
		*r.Email = strings.ToLower(*r.Email)
	}
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(3, 30)),
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat.Error("Please add a valid email")),
		validation.Field(&r.Bio, validation.Length(0, 500)),
		validation.Field(&r.Avatar, validation.When(r.Avatar != nil && *r.Avatar != "", is.URL)),
		validation.Field(&r.Preferences, validation.By(jsonObject)),
	)
}

// Apply copies the provided fields onto u. Call Normalize first.
func (r UpdateProfileRequest) Apply(u *User) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Bio != nil {
		u.Bio = r.Bio
	}
	if r.Avatar != nil {
		u.Avatar = r.Avatar
	}
	if r.Preferences != nil {
		u.Preferences = *r.Preferences
	}
}

// maxBytes caps the encoded length; bcrypt rejects passwords over 72 bytes.
func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		if s, ok := value.(string); ok && len(s) > n {
			return validation.NewError("validation_max_bytes", fmt.Sprintf("must be at most %d bytes", n))
		}
		return nil
	}
}

func jsonObject(value interface{}) error {
	raw, ok := value.(*json.RawMessage)
	if !ok || raw == nil {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(*raw, &obj); err != nil || obj == nil {
		return validation.NewError("validation_is_object", "must be an object")
	}
	return nil
}

// ========================================
// READING LIST DTOs
// ========================================

type AddToReadingListRequest struct {
	BookID string `json:"bookId"`
}

func (r AddToReadingListRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("Please provide a book ID")),
	)
}

// ReadingListItem is returned after a book is added.
type ReadingListItem struct {
	BookID     uuid.UUID `json:"bookId"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	CoverImage string    `json:"coverImage"`
	AddedAt    time.Time `json:"addedAt"`
}
