package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booknook-backend/internal/domains/review/model"
)

var (
	selectRatings    = regexp.QuoteMeta(`SELECT rating FROM reviews WHERE book_id = $1`)
	updateBookRating = regexp.QuoteMeta(`UPDATE books SET rating = ROUND($2::numeric, 1), review_count = $3, updated_at = NOW() WHERE id = $1`)
	lockBook         = regexp.QuoteMeta(`SELECT id, author_id, author FROM books WHERE id = $1 FOR UPDATE`)
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, ReviewRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func TestRecomputeBookRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		rating  string
		count   int
	}{
		{"average of two", []int{5, 4}, "4.5", 2},
		{"rounded to one decimal", []int{5, 4, 4}, "4.3", 3},
		{"no reviews left", nil, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepo(t)
			bookID := uuid.New()

			rows := pgxmock.NewRows([]string{"rating"})
			for _, r := range tt.ratings {
				rows.AddRow(r)
			}
			mock.ExpectQuery(selectRatings).WithArgs(bookID).WillReturnRows(rows)
			mock.ExpectExec(updateBookRating).
				WithArgs(bookID, tt.rating, tt.count).
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))

			agg, err := repo.RecomputeBookRating(context.Background(), bookID)
			require.NoError(t, err)
			assert.Equal(t, tt.rating, agg.Rating.String())
			assert.Equal(t, tt.count, agg.Count)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("update failure is returned", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		bookID := uuid.New()

		mock.ExpectQuery(selectRatings).WithArgs(bookID).
			WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(3))
		mock.ExpectExec(updateBookRating).WithArgs(bookID, "3", 1).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.RecomputeBookRating(context.Background(), bookID)
		assert.ErrorContains(t, err, "write book rating")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLockBook(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		bookID, authorID := uuid.New(), uuid.New()

		mock.ExpectQuery(lockBook).WithArgs(bookID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "author"}).
				AddRow(bookID.String(), authorID.String(), "frank"))

		ref, err := repo.LockBook(context.Background(), bookID)
		require.NoError(t, err)
		assert.Equal(t, bookID, ref.ID)
		assert.Equal(t, authorID, ref.AuthorID)
		assert.Equal(t, "frank", ref.Author)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing book", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		bookID := uuid.New()

		mock.ExpectQuery(lockBook).WithArgs(bookID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.LockBook(context.Background(), bookID)
		assert.ErrorIs(t, err, model.ErrBookNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreate(t *testing.T) {
	insert := regexp.QuoteMeta(`INSERT INTO reviews (id, book_id, user_id, rating, comment)`)

	t.Run("timestamps come from the database", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		rv := &model.Review{ID: uuid.New(), BookID: uuid.New(), UserID: uuid.New(), Rating: 4, Comment: "solid"}
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		mock.ExpectQuery(insert).
			WithArgs(rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		require.NoError(t, repo.Create(context.Background(), rv))
		assert.Equal(t, now, rv.CreatedAt)
		assert.Equal(t, now, rv.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate review", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		rv := &model.Review{ID: uuid.New(), BookID: uuid.New(), UserID: uuid.New(), Rating: 4}

		mock.ExpectQuery(insert).
			WithArgs(rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_book_user_unique"})

		err := repo.Create(context.Background(), rv)
		assert.ErrorIs(t, err, model.ErrAlreadyReviewed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other unique index is not a duplicate review", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		rv := &model.Review{ID: uuid.New(), BookID: uuid.New(), UserID: uuid.New(), Rating: 4}

		mock.ExpectQuery(insert).
			WithArgs(rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_pkey"})

		err := repo.Create(context.Background(), rv)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrAlreadyReviewed)
	})
}

func TestDelete_MissingReview(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reviews WHERE id = $1`)).WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), model.ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx(t *testing.T) {
	t.Run("commits and recomputes inside the transaction", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		bookID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(lockBook).WithArgs(bookID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "author"}).
				AddRow(bookID.String(), uuid.NewString(), "frank"))
		mock.ExpectQuery(selectRatings).WithArgs(bookID).
			WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(5).AddRow(4))
		mock.ExpectExec(updateBookRating).WithArgs(bookID, "4.5", 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := repo.WithTx(context.Background(), func(tx ReviewRepository) error {
			if _, err := tx.LockBook(context.Background(), bookID); err != nil {
				return err
			}
			_, err := tx.RecomputeBookRating(context.Background(), bookID)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		bookID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(lockBook).WithArgs(bookID).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		err := repo.WithTx(context.Background(), func(tx ReviewRepository) error {
			_, err := tx.LockBook(context.Background(), bookID)
			return err
		})
		assert.ErrorIs(t, err, model.ErrBookNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
