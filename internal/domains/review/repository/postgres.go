package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/shared/listquery"
	"booknook-backend/pkg/database"
)

const (
	uniqueViolation    = "23505"
	reviewUniqueIndex  = "reviews_book_user_unique"
	reviewWithReviewer = `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at,
		       u.id, u.name, u.username, u.avatar
		FROM reviews r
		JOIN users u ON u.id = r.user_id
	`
)

// Schema is the list query contract for GET /reviews.
var Schema = listquery.Schema{
	Alias: "r",
	Fields: map[string]listquery.Field{
		"id":        {Column: "id", Type: listquery.UUID},
		"bookId":    {Column: "book_id", Type: listquery.UUID},
		"userId":    {Column: "user_id", Type: listquery.UUID},
		"rating":    {Column: "rating", Type: listquery.Int},
		"comment":   {Column: "comment", Type: listquery.String},
		"createdAt": {Column: "created_at", Type: listquery.Time},
		"updatedAt": {Column: "updated_at", Type: listquery.Time},
	},
	DefaultSort:  "-createdAt",
	TieBreaker:   "id",
	AlwaysSelect: []string{"id"},
}

type postgresReviewRepository struct {
	pool database.Pool
	db   database.Querier
}

func NewPostgresRepository(pool database.Pool) ReviewRepository {
	return &postgresReviewRepository{pool: pool, db: pool}
}

func (r *postgresReviewRepository) WithTx(ctx context.Context, fn func(repo ReviewRepository) error) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&postgresReviewRepository{pool: r.pool, db: tx})
	})
}

func scanReview(row pgx.Row) (*model.Review, error) {
	var (
		rv   model.Review
		user model.Reviewer
	)
	err := row.Scan(
		&rv.ID, &rv.BookID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
		&user.ID, &user.Name, &user.Username, &user.Avatar,
	)
	if err != nil {
		return nil, err
	}
	rv.User = &user
	return &rv, nil
}

// ========================================
// READS
// ========================================

func (r *postgresReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	rv, err := scanReview(r.db.QueryRow(ctx, reviewWithReviewer+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rv, nil
}

func (r *postgresReviewRepository) List(ctx context.Context, q *listquery.Query) ([]model.Review, int64, error) {
	where, args := q.Where(Schema, 1)

	var total int64
	countQuery := `SELECT COUNT(*) FROM reviews r WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		reviewWithReviewer, where, q.OrderBy(Schema), len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *postgresReviewRepository) ExistsForUser(ctx context.Context, bookID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE book_id = $1 AND user_id = $2)`,
		bookID, userID,
	).Scan(&exists)
	return exists, err
}

// ========================================
// WRITES
// ========================================

func (r *postgresReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment).
		Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == reviewUniqueIndex {
			return model.ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *postgresReviewRepository) Update(ctx context.Context, rv *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, rv.ID, rv.Rating, rv.Comment).Scan(&rv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *postgresReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

// ========================================
// PARENT BOOK
// ========================================

func (r *postgresReviewRepository) LockBook(ctx context.Context, bookID uuid.UUID) (*model.BookRef, error) {
	var ref model.BookRef
	err := r.db.QueryRow(ctx,
		`SELECT id, author_id, author FROM books WHERE id = $1 FOR UPDATE`,
		bookID,
	).Scan(&ref.ID, &ref.AuthorID, &ref.Author)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock book: %w", err)
	}
	return &ref, nil
}

func (r *postgresReviewRepository) RecomputeBookRating(ctx context.Context, bookID uuid.UUID) (model.RatingAggregate, error) {
	rows, err := r.db.Query(ctx, `SELECT rating FROM reviews WHERE book_id = $1`, bookID)
	if err != nil {
		return model.RatingAggregate{}, fmt.Errorf("load ratings: %w", err)
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return model.RatingAggregate{}, fmt.Errorf("collect ratings: %w", err)
	}

	agg := model.ComputeAggregate(ratings)

	_, err = r.db.Exec(ctx,
		`UPDATE books SET rating = ROUND($2::numeric, 1), review_count = $3, updated_at = NOW() WHERE id = $1`,
		bookID, agg.Rating.String(), agg.Count,
	)
	if err != nil {
		return model.RatingAggregate{}, fmt.Errorf("write book rating: %w", err)
	}
	return agg, nil
}
