package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"booknook-backend/internal/domains/book/model"
	reviewmodel "booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/shared/listquery"
	"booknook-backend/pkg/database"
	"booknook-backend/pkg/logger"
)

const bookColumns = `
	b.id, b.title, b.author_id, b.author, b.description, b.cover_image, b.genre,
	b.published_date, b.featured, b.rating::float8 AS rating, b.review_count,
	b.created_at, b.updated_at`

// Schema is the list query contract for GET /books.
var Schema = listquery.Schema{
	Alias: "b",
	Fields: map[string]listquery.Field{
		"id":            {Column: "id", Type: listquery.UUID},
		"title":         {Column: "title", Type: listquery.String},
		"authorId":      {Column: "author_id", Type: listquery.UUID},
		"author":        {Column: "author", Type: listquery.String},
		"description":   {Column: "description", Type: listquery.String},
		"coverImage":    {Column: "cover_image", Type: listquery.String},
		"genre":         {Column: "genre", Type: listquery.String},
		"publishedDate": {Column: "published_date", Type: listquery.String},
		"featured":      {Column: "featured", Type: listquery.Bool},
		"rating":        {Column: "rating", Type: listquery.Float},
		"reviewCount":   {Column: "review_count", Type: listquery.Int},
		"createdAt":     {Column: "created_at", Type: listquery.Time},
		"updatedAt":     {Column: "updated_at", Type: listquery.Time},
	},
	SearchFields: []string{"title", "author", "genre"},
	DefaultSort:  "-createdAt",
	TieBreaker:   "id",
	AlwaysSelect: []string{"id"},
}

type postgresRepository struct {
	pool database.Pool
	db   database.Querier
}

func NewPostgresRepository(pool database.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool, db: pool}
}

// ============================================
// LIST
// ============================================

func (r *postgresRepository) List(ctx context.Context, q *listquery.Query) ([]model.Book, int64, error) {
	where, args := q.Where(Schema, 1)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books b WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count query failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM books b WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookColumns, where, q.OrderBy(Schema), len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	logger.Debug("list books: " + query)

	books, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.author_id = $1 ORDER BY b.created_at DESC, b.id`
	return r.collect(ctx, query, authorID)
}

// collect runs query and maps rows to Book by column name.
func (r *postgresRepository) collect(ctx context.Context, query string, args ...any) ([]model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books query failed: %w", err)
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}
	return books, nil
}

// ============================================
// DETAIL
// ============================================

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get book query failed: %w", err)
	}

	book, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Book])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book failed: %w", err)
	}
	return book, nil
}

func (r *postgresRepository) ListReviews(ctx context.Context, bookID uuid.UUID) ([]reviewmodel.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at,
		       u.id, u.name, u.username, u.avatar
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1
		ORDER BY r.created_at DESC, r.id
	`
	rows, err := r.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list book reviews: %w", err)
	}
	defer rows.Close()

	reviews := []reviewmodel.Review{}
	for rows.Next() {
		var (
			rv   reviewmodel.Review
			user reviewmodel.Reviewer
		)
		if err := rows.Scan(
			&rv.ID, &rv.BookID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
			&user.ID, &user.Name, &user.Username, &user.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan book review: %w", err)
		}
		rv.User = &user
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// ============================================
// WRITES
// ============================================

func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, author_id, author, description, cover_image, genre,
			published_date, featured, rating, review_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		book.ID, book.Title, book.AuthorID, book.Author, book.Description, book.CoverImage, book.Genre,
		book.PublishedDate, book.Featured,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	book.Rating, book.ReviewCount = 0, 0
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, description = $3, cover_image = $4, genre = $5,
		    published_date = $6, featured = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		book.ID, book.Title, book.Description, book.CoverImage, book.Genre,
		book.PublishedDate, book.Featured,
	).Scan(&book.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteWithReviews(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE book_id = $1`, id); err != nil {
			return fmt.Errorf("delete book reviews: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrBookNotFound
		}
		return nil
	})
}
