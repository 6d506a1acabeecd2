package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/domains/review/repository"
	"booknook-backend/internal/shared/listquery"
)

// fakeState is everything a transaction can roll back.
type fakeState struct {
	reviews map[uuid.UUID]model.Review
	books   map[uuid.UUID]model.BookRef
	ratings map[uuid.UUID]model.RatingAggregate
}

func (s fakeState) clone() fakeState {
	out := fakeState{
		reviews: make(map[uuid.UUID]model.Review, len(s.reviews)),
		books:   make(map[uuid.UUID]model.BookRef, len(s.books)),
		ratings: make(map[uuid.UUID]model.RatingAggregate, len(s.ratings)),
	}
	for k, v := range s.reviews {
		out.reviews[k] = v
	}
	for k, v := range s.books {
		out.books[k] = v
	}
	for k, v := range s.ratings {
		out.ratings[k] = v
	}
	return out
}

type fakeReviewRepository struct {
	mu        sync.Mutex
	state     fakeState
	reviewers map[uuid.UUID]model.Reviewer
	clock     time.Time
	txCount   int
}

func newFakeReviewRepository() *fakeReviewRepository {
	return &fakeReviewRepository{
		state: fakeState{
			reviews: map[uuid.UUID]model.Review{},
			books:   map[uuid.UUID]model.BookRef{},
			ratings: map[uuid.UUID]model.RatingAggregate{},
		},
		reviewers: map[uuid.UUID]model.Reviewer{},
		clock:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeReviewRepository) addBook(authorID uuid.UUID, author string) uuid.UUID {
	id := uuid.New()
	f.state.books[id] = model.BookRef{ID: id, AuthorID: authorID, Author: author}
	return id
}

func (f *fakeReviewRepository) addReviewer(username string) uuid.UUID {
	id := uuid.New()
	f.reviewers[id] = model.Reviewer{ID: id, Name: username, Username: username}
	return id
}

func (f *fakeReviewRepository) removeBook(id uuid.UUID) {
	delete(f.state.books, id)
}

func (f *fakeReviewRepository) aggregate(bookID uuid.UUID) model.RatingAggregate {
	return f.state.ratings[bookID]
}

func (f *fakeReviewRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeReviewRepository) WithTx(_ context.Context, fn func(repository.ReviewRepository) error) error {
	f.txCount++
	snapshot := f.state.clone()
	if err := fn(f); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func (f *fakeReviewRepository) populate(rv model.Review) model.Review {
	if user, ok := f.reviewers[rv.UserID]; ok {
		rv.User = &user
	}
	return rv
}

func (f *fakeReviewRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Review, error) {
	rv, ok := f.state.reviews[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}
	out := f.populate(rv)
	return &out, nil
}

// List honours bookId equality filters and newest-first order only.
func (f *fakeReviewRepository) List(_ context.Context, q *listquery.Query) ([]model.Review, int64, error) {
	var bookID uuid.UUID
	for _, flt := range q.Filters {
		if flt.Field == "bookId" && flt.Op == listquery.OpEq {
			bookID = flt.Values[0].(uuid.UUID)
		}
	}

	matched := []model.Review{}
	for _, rv := range f.state.reviews {
		if rv.BookID == bookID {
			matched = append(matched, f.populate(rv))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeReviewRepository) ExistsForUser(_ context.Context, bookID, userID uuid.UUID) (bool, error) {
	for _, rv := range f.state.reviews {
		if rv.BookID == bookID && rv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepository) Create(_ context.Context, rv *model.Review) error {
	for _, existing := range f.state.reviews {
		if existing.BookID == rv.BookID && existing.UserID == rv.UserID {
			return model.ErrAlreadyReviewed
		}
	}
	now := f.tick()
	rv.CreatedAt, rv.UpdatedAt = now, now
	stored := *rv
	stored.User = nil
	f.state.reviews[rv.ID] = stored
	return nil
}

func (f *fakeReviewRepository) Update(_ context.Context, rv *model.Review) error {
	existing, ok := f.state.reviews[rv.ID]
	if !ok {
		return model.ErrReviewNotFound
	}
	existing.Rating = rv.Rating
	existing.Comment = rv.Comment
	existing.UpdatedAt = f.tick()
	f.state.reviews[rv.ID] = existing
	return nil
}

func (f *fakeReviewRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.state.reviews[id]; !ok {
		return model.ErrReviewNotFound
	}
	delete(f.state.reviews, id)
	return nil
}

func (f *fakeReviewRepository) LockBook(_ context.Context, bookID uuid.UUID) (*model.BookRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref, ok := f.state.books[bookID]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return &ref, nil
}

func (f *fakeReviewRepository) RecomputeBookRating(_ context.Context, bookID uuid.UUID) (model.RatingAggregate, error) {
	var ratings []int
	for _, rv := range f.state.reviews {
		if rv.BookID == bookID {
			ratings = append(ratings, rv.Rating)
		}
	}
	agg := model.ComputeAggregate(ratings)
	f.state.ratings[bookID] = agg
	return agg, nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateBooks(context.Context) {
	c.calls++
}
