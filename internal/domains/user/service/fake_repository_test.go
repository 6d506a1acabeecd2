package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/user/model"
)

type fakeEntry struct {
	bookID  uuid.UUID
	addedAt time.Time
}

// fakeUserRepository is an in-memory repository.UserRepository.
type fakeUserRepository struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*model.User
	books   map[uuid.UUID]*model.BookSummary
	lists   map[uuid.UUID][]fakeEntry
	now     time.Time
	findErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users: map[uuid.UUID]*model.User{},
		books: map[uuid.UUID]*model.BookSummary{},
		lists: map[uuid.UUID][]fakeEntry{},
		now:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeUserRepository) addUser(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return u
}

func (f *fakeUserRepository) addBook(title, author string) *model.BookSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &model.BookSummary{ID: uuid.New(), Title: title, Author: author, CoverImage: "https://img/" + title}
	f.books[b.ID] = b
	return b
}

func (f *fakeUserRepository) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return model.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return model.ErrEmailTaken
		}
	}
	u.CreatedAt, u.UpdatedAt = f.now, f.now
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepository) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeUserRepository) UsernameExists(_ context.Context, username string, excludeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if id != excludeID && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepository) EmailExists(_ context.Context, email string, excludeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if id != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepository) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	cp := *u
	cp.PasswordHash = existing.PasswordHash
	cp.UpdatedAt = f.now
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepository) UpdateRoleByEmail(_ context.Context, email, role string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.Role = role
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeUserRepository) ReadingList(_ context.Context, userID uuid.UUID) ([]model.ReadingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ReadingListEntry{}
	for _, e := range f.lists[userID] {
		entry := model.ReadingListEntry{BookID: e.bookID, AddedAt: e.addedAt}
		if b, ok := f.books[e.bookID]; ok {
			cp := *b
			entry.Book = &cp
		}
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeUserRepository) FindBookSummary(_ context.Context, bookID uuid.UUID) (*model.BookSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeUserRepository) AddToReadingList(_ context.Context, userID, bookID uuid.UUID) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.lists[userID] {
		if e.bookID == bookID {
			return time.Time{}, model.ErrAlreadyInList
		}
	}
	f.lists[userID] = append(f.lists[userID], fakeEntry{bookID: bookID, addedAt: f.now})
	return f.now, nil
}

func (f *fakeUserRepository) RemoveFromReadingList(_ context.Context, userID, bookID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.lists[userID]
	for i, e := range list {
		if e.bookID == bookID {
			f.lists[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return model.ErrNotInReadingList
}

func (f *fakeUserRepository) deleteBook(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.books, id)
}
