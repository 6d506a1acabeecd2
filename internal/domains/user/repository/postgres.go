package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"booknook-backend/internal/domains/user/model"
	"booknook-backend/internal/shared/metrics"
	"booknook-backend/pkg/cache"
	"booknook-backend/pkg/database"
	"booknook-backend/pkg/logger"
)

const (
	userColumns = `id, username, email, password_hash, name, bio, avatar, role, preferences, created_at, updated_at`

	uniqueViolation = "23505"
)

type postgresRepository struct {
	db       database.Querier
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewPostgresRepository builds the user repository. cache may be nil.
func NewPostgresRepository(db database.Querier, c cache.Cache, cacheTTL time.Duration) UserRepository {
	return &postgresRepository{
		db:       db,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Name,
		&u.Bio, &u.Avatar, &u.Role, &u.Preferences,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// mapUniqueViolation turns users_*_key violations into domain errors.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return model.ErrUsernameTaken
		case "users_email_key":
			return model.ErrEmailTaken
		}
	}
	return err
}

// ========================================
// USERS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, name, bio, avatar, role, preferences)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Name,
		u.Bio, u.Avatar, u.Role, u.Preferences,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := cacheKey(id)

	if r.cache != nil {
		var cached model.User
		found, err := r.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("user", "error").Inc()
		case found:
			metrics.CacheLookups.WithLabelValues("user", "hit").Inc()
			return &cached, nil
		default:
			metrics.CacheLookups.WithLabelValues("user", "miss").Inc()
		}
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, u, r.cacheTTL); err != nil {
			logger.Warn("failed to cache user", map[string]interface{}{"user_id": id.String(), "error": err.Error()})
		}
	}
	return u, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *postgresRepository) UsernameExists(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`,
		username, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *postgresRepository) EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *postgresRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, name = $4, bio = $5, avatar = $6,
		    preferences = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		u.ID, u.Username, u.Email, u.Name, u.Bio, u.Avatar, u.Preferences,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return mapUniqueViolation(err)
	}

	r.evict(ctx, u.ID)
	return nil
}

func (r *postgresRepository) UpdateRoleByEmail(ctx context.Context, email, role string) (*model.User, error) {
	query := `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, email, role))
	if err != nil {
		return nil, err
	}

	r.evict(ctx, u.ID)
	return u, nil
}

func (r *postgresRepository) evict(ctx context.Context, id uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		logger.Warn("failed to evict cached user", map[string]interface{}{"user_id": id.String(), "error": err.Error()})
	}
}

// ========================================
// READING LIST
// ========================================

func (r *postgresRepository) ReadingList(ctx context.Context, userID uuid.UUID) ([]model.ReadingListEntry, error) {
	query := `
		SELECT e.book_id, e.added_at, b.id, b.title, b.author, b.cover_image
		FROM reading_list_entries e
		LEFT JOIN books b ON b.id = e.book_id
		WHERE e.user_id = $1
		ORDER BY e.position
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query reading list: %w", err)
	}
	defer rows.Close()

	entries := []model.ReadingListEntry{}
	for rows.Next() {
		var (
			e                         model.ReadingListEntry
			bookID                    *uuid.UUID
			title, author, coverImage *string
		)
		if err := rows.Scan(&e.BookID, &e.AddedAt, &bookID, &title, &author, &coverImage); err != nil {
			return nil, fmt.Errorf("scan reading list entry: %w", err)
		}
		if bookID != nil {
			e.Book = &model.BookSummary{
				ID:         *bookID,
				Title:      deref(title),
				Author:     deref(author),
				CoverImage: deref(coverImage),
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresRepository) FindBookSummary(ctx context.Context, bookID uuid.UUID) (*model.BookSummary, error) {
	var b model.BookSummary
	err := r.db.QueryRow(ctx,
		`SELECT id, title, author, cover_image FROM books WHERE id = $1`, bookID,
	).Scan(&b.ID, &b.Title, &b.Author, &b.CoverImage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) AddToReadingList(ctx context.Context, userID, bookID uuid.UUID) (time.Time, error) {
	var addedAt time.Time
	err := r.db.QueryRow(ctx, `
		INSERT INTO reading_list_entries (user_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, book_id) DO NOTHING
		RETURNING added_at
	`, userID, bookID).Scan(&addedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, model.ErrAlreadyInList
	}
	if err != nil {
		return time.Time{}, err
	}
	return addedAt, nil
}

func (r *postgresRepository) RemoveFromReadingList(ctx context.Context, userID, bookID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM reading_list_entries WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotInReadingList
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
