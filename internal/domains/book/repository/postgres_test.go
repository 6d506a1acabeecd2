package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booknook-backend/internal/domains/book/model"
)

var (
	deleteBookReviews = regexp.QuoteMeta(`DELETE FROM reviews WHERE book_id = $1`)
	deleteBook        = regexp.QuoteMeta(`DELETE FROM books WHERE id = $1`)
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, RepositoryInterface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func TestFindByID(t *testing.T) {
	columns := []string{
		"id", "title", "author_id", "author", "description", "cover_image", "genre",
		"published_date", "featured", "rating", "review_count", "created_at", "updated_at",
	}
	query := regexp.QuoteMeta(`FROM books b WHERE b.id = $1`)

	t.Run("maps columns by name", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		id, authorID := uuid.New(), uuid.New()
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(pgxmock.NewRows(columns).AddRow(
			id.String(), "Dune", authorID.String(), "Frank Herbert", "Spice", "dune.jpg", "scifi",
			"1965-08-01", true, 4.5, 2, created, created,
		))

		book, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, book.ID)
		assert.Equal(t, authorID, book.AuthorID)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
		assert.Equal(t, "1965-08-01", book.PublishedDate)
		assert.True(t, book.Featured)
		assert.Equal(t, 4.5, book.Rating)
		assert.Equal(t, 2, book.ReviewCount)
		assert.Equal(t, created, book.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing book", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		id := uuid.New()

		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(pgxmock.NewRows(columns))

		_, err := repo.FindByID(context.Background(), id)
		assert.ErrorIs(t, err, model.ErrBookNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteWithReviews(t *testing.T) {
	t.Run("removes reviews then the book in one transaction", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(deleteBookReviews).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectExec(deleteBook).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		require.NoError(t, repo.DeleteWithReviews(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing book rolls back the review delete", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(deleteBookReviews).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec(deleteBook).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.DeleteWithReviews(context.Background(), id), model.ErrBookNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

		err := repo.DeleteWithReviews(context.Background(), uuid.New())
		assert.ErrorContains(t, err, "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
