package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booknook-backend/internal/domains/user/model"
	"booknook-backend/internal/shared"
)

func strPtr(s string) *string { return &s }

func seedUsers(repo *fakeUserRepository) (alice, bob, admin *model.User) {
	alice = repo.addUser(&model.User{Username: "alice", Email: "alice@x.com", Name: "Alice", Role: shared.RoleUser})
	bob = repo.addUser(&model.User{Username: "bob", Email: "bob@x.com", Name: "Bob", Role: shared.RoleUser})
	admin = repo.addUser(&model.User{Username: "root", Email: "root@x.com", Name: "Root", Role: shared.RoleAdmin})
	return alice, bob, admin
}

func TestGetProfile_Authorization(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo, nil)
	alice, bob, admin := seedUsers(repo)
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx, alice.ID.String(), alice.Identity())
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	profile, err = svc.GetProfile(ctx, alice.ID.String(), admin.Identity())
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = svc.GetProfile(ctx, alice.ID.String(), bob.Identity())
	requireAppError(t, err, http.StatusUnauthorized, "Not authorized to access this profile")

	missing := uuid.NewString()
	_, err = svc.GetProfile(ctx, missing, admin.Identity())
	requireAppError(t, err, http.StatusNotFound, "User not found with id of "+missing)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo, nil)
	alice, bob, admin := seedUsers(repo)
	ctx := context.Background()

	t.Run("self update applies provided fields only", func(t *testing.T) {
		prefs := json.RawMessage(`{"theme":"dark"}`)
		profile, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{
			Bio:         strPtr("reader"),
			Preferences: &prefs,
		}, alice.Identity())
		require.NoError(t, err)

		assert.Equal(t, "alice", profile.Username)
		assert.Equal(t, "Alice", profile.Name)
		require.NotNil(t, profile.Bio)
		assert.Equal(t, "reader", *profile.Bio)
		assert.JSONEq(t, `{"theme":"dark"}`, string(profile.Preferences))
	})

	t.Run("admin cannot update someone else", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Name: strPtr("Hacked")}, admin.Identity())
		requireAppError(t, err, http.StatusUnauthorized, "Not authorized to update this profile")
	})

	t.Run("other user cannot update", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Name: strPtr("Hacked")}, bob.Identity())
		requireAppError(t, err, http.StatusUnauthorized, "Not authorized to update this profile")
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Username: strPtr("bob")}, alice.Identity())
		requireAppError(t, err, http.StatusBadRequest, "Username is already taken")
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Email: strPtr("BOB@x.com")}, alice.Identity())
		requireAppError(t, err, http.StatusBadRequest, "Email is already registered")
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Email: strPtr("nope")}, alice.Identity())
		requireAppError(t, err, http.StatusBadRequest, "")
	})

	t.Run("preferences must be an object", func(t *testing.T) {
		prefs := json.RawMessage(`[1,2]`)
		_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Preferences: &prefs}, alice.Identity())
		requireAppError(t, err, http.StatusBadRequest, "")
	})

	t.Run("whitespace-only username and name are rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{
			Username: strPtr("     "),
			Name:     strPtr("   "),
		}, alice.Identity())
		requireAppError(t, err, http.StatusBadRequest, "")

		stored, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", stored.Username)
		assert.Equal(t, "Alice", stored.Name)
	})

	t.Run("identity fields are trimmed", func(t *testing.T) {
		profile, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{
			Name:  strPtr("  Alice L.  "),
			Email: strPtr("  Alice@Example.COM "),
		}, alice.Identity())
		require.NoError(t, err)
		assert.Equal(t, "Alice L.", profile.Name)
		assert.Equal(t, "alice@example.com", profile.Email)
	})
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateBooks(context.Context) { c.calls++ }

func TestUpdateProfile_EvictsBookCacheWhenReviewerFieldsChange(t *testing.T) {
	repo := newFakeUserRepository()
	books := &countingInvalidator{}
	svc := NewUserService(repo, books)
	alice, _, _ := seedUsers(repo)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Bio: strPtr("reader")}, alice.Identity())
	require.NoError(t, err)
	assert.Equal(t, 0, books.calls)

	_, err = svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Name: strPtr("Alice L.")}, alice.Identity())
	require.NoError(t, err)
	assert.Equal(t, 1, books.calls)

	_, err = svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Avatar: strPtr("https://img.example.com/a.png")}, alice.Identity())
	require.NoError(t, err)
	assert.Equal(t, 2, books.calls)

	_, err = svc.UpdateProfile(ctx, alice.ID.String(), model.UpdateProfileRequest{Username: strPtr("alice")}, alice.Identity())
	require.NoError(t, err)
	assert.Equal(t, 2, books.calls)
}

func TestReadingList(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo, nil)
	alice, bob, _ := seedUsers(repo)
	dune := repo.addBook("Dune", "frank")
	ctx := context.Background()
	req := model.AddToReadingListRequest{BookID: dune.ID.String()}

	item, err := svc.AddToReadingList(ctx, alice.ID.String(), req, alice.Identity())
	require.NoError(t, err)
	assert.Equal(t, dune.ID, item.BookID)
	assert.Equal(t, "Dune", item.Title)
	assert.Equal(t, "frank", item.Author)
	assert.False(t, item.AddedAt.IsZero())

	_, err = svc.AddToReadingList(ctx, alice.ID.String(), req, alice.Identity())
	requireAppError(t, err, http.StatusBadRequest, "Book already in reading list")

	_, err = svc.AddToReadingList(ctx, alice.ID.String(), req, bob.Identity())
	requireAppError(t, err, http.StatusUnauthorized, "Not authorized to update this reading list")

	missing := uuid.NewString()
	_, err = svc.AddToReadingList(ctx, alice.ID.String(), model.AddToReadingListRequest{BookID: missing}, alice.Identity())
	requireAppError(t, err, http.StatusNotFound, "Book not found with id of "+missing)

	_, err = svc.AddToReadingList(ctx, alice.ID.String(), model.AddToReadingListRequest{}, alice.Identity())
	requireAppError(t, err, http.StatusBadRequest, "bookId: Please provide a book ID")

	profile, err := svc.GetProfile(ctx, alice.ID.String(), alice.Identity())
	require.NoError(t, err)
	require.Len(t, profile.ReadingList, 1)
	require.NotNil(t, profile.ReadingList[0].Book)
	assert.Equal(t, "Dune", profile.ReadingList[0].Book.Title)

	err = svc.RemoveFromReadingList(ctx, alice.ID.String(), dune.ID.String(), bob.Identity())
	requireAppError(t, err, http.StatusUnauthorized, "Not authorized to update this reading list")

	require.NoError(t, svc.RemoveFromReadingList(ctx, alice.ID.String(), dune.ID.String(), alice.Identity()))

	err = svc.RemoveFromReadingList(ctx, alice.ID.String(), dune.ID.String(), alice.Identity())
	requireAppError(t, err, http.StatusNotFound, "Book not found in reading list")
}

func TestReadingList_DanglingBookExpandsToNil(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo, nil)
	alice, _, _ := seedUsers(repo)
	dune := repo.addBook("Dune", "frank")
	ctx := context.Background()

	_, err := svc.AddToReadingList(ctx, alice.ID.String(), model.AddToReadingListRequest{BookID: dune.ID.String()}, alice.Identity())
	require.NoError(t, err)

	repo.deleteBook(dune.ID)

	profile, err := svc.GetProfile(ctx, alice.ID.String(), alice.Identity())
	require.NoError(t, err)
	require.Len(t, profile.ReadingList, 1)
	assert.Equal(t, dune.ID, profile.ReadingList[0].BookID)
	assert.Nil(t, profile.ReadingList[0].Book)

	// stale entries can still be removed
	require.NoError(t, svc.RemoveFromReadingList(ctx, alice.ID.String(), dune.ID.String(), alice.Identity()))
}

func TestPromoteToAdmin(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo, nil)
	alice, _, _ := seedUsers(repo)

	u, err := svc.PromoteToAdmin(context.Background(), " Alice@x.com ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Equal(t, shared.RoleAdmin, u.Role)

	_, err = svc.PromoteToAdmin(context.Background(), "ghost@x.com")
	requireAppError(t, err, http.StatusNotFound, "User with email ghost@x.com not found")
}
