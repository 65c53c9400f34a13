package repository

import (
	"book_review_api/internal/common"
	"book_review_api/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id string) (*model.Review, error)
	FindByUserAndBook(ctx context.Context, userID, bookID string) (*model.Review, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id string) error
	ListByBook(ctx context.Context, bookID string, limit, offset int) ([]model.Review, int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Review, int, error)
	RatingsByBook(ctx context.Context, bookIDs []string) (map[string][]int, error)
}

type pgReviewRepository struct {
	db *sql.DB
}

func NewPgReviewRepository(db *sql.DB) ReviewRepository {
	return &pgReviewRepository{db: db}
}

func (r *pgReviewRepository) Create(ctx context.Context, rev *model.Review) error {
	query := `INSERT INTO reviews (id, rating, comment, user_id, book_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, rev.ID, rev.Rating, rev.Comment, rev.UserID, rev.BookID).
		Scan(&rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // one review per (user, book)
			return common.WithMessage(common.ErrDuplicate, "You have already reviewed this book")
		}
		return fmt.Errorf("pgReviewRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	query := `SELECT id, rating, comment, user_id, book_id, created_at, updated_at
	          FROM reviews WHERE id = $1`
	rev := &model.Review{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rev.ID, &rev.Rating, &rev.Comment, &rev.UserID, &rev.BookID, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReviewRepository.FindByID: %w", err)
	}
	return rev, nil
}

func (r *pgReviewRepository) FindByUserAndBook(ctx context.Context, userID, bookID string) (*model.Review, error) {
	query := `SELECT id, rating, comment, user_id, book_id, created_at, updated_at
	          FROM reviews WHERE user_id = $1 AND book_id = $2`
	rev := &model.Review{}
	err := r.db.QueryRowContext(ctx, query, userID, bookID).Scan(
		&rev.ID, &rev.Rating, &rev.Comment, &rev.UserID, &rev.BookID, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReviewRepository.FindByUserAndBook: %w", err)
	}
	return rev, nil
}

func (r *pgReviewRepository) Update(ctx context.Context, rev *model.Review) error {
	query := `UPDATE reviews SET rating = $1, comment = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, rev.Rating, rev.Comment, rev.ID).Scan(&rev.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgReviewRepository.Update: %w", err)
	}
	return nil
}

func (r *pgReviewRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgReviewRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgReviewRepository.Delete affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgReviewRepository) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]model.Review, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE book_id = $1`, bookID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByBook count: %w", err)
	}

	query := `SELECT r.id, r.rating, r.comment, r.user_id, r.book_id, u.name, u.email,
	                 r.created_at, r.updated_at
	          FROM reviews r
	          JOIN users u ON r.user_id = u.id
	          WHERE r.book_id = $1
	          ORDER BY r.created_at DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByBook query: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(
			&rev.ID, &rev.Rating, &rev.Comment, &rev.UserID, &rev.BookID, &rev.UserName, &rev.UserEmail,
			&rev.CreatedAt, &rev.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgReviewRepository.ListByBook scan: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByBook rows.Err: %w", err)
	}
	return reviews, total, nil
}

func (r *pgReviewRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Review, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByUser count: %w", err)
	}

	query := `SELECT r.id, r.rating, r.comment, r.user_id, r.book_id, b.title, b.author, b.genre,
	                 r.created_at, r.updated_at
	          FROM reviews r
	          JOIN books b ON r.book_id = b.id
	          WHERE r.user_id = $1
	          ORDER BY r.created_at DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(
			&rev.ID, &rev.Rating, &rev.Comment, &rev.UserID, &rev.BookID, &rev.BookTitle, &rev.BookAuthor, &rev.BookGenre,
			&rev.CreatedAt, &rev.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgReviewRepository.ListByUser scan: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.ListByUser rows.Err: %w", err)
	}
	return reviews, total, nil
}

// RatingsByBook fetches the full rating set for each given book in one
// query, keyed by book id. Books with no reviews are absent from the map.
func (r *pgReviewRepository) RatingsByBook(ctx context.Context, bookIDs []string) (map[string][]int, error) {
	ratings := make(map[string][]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return ratings, nil
	}

	placeholders := make([]string, len(bookIDs))
	args := make([]interface{}, len(bookIDs))
	for i, id := range bookIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT book_id, rating FROM reviews WHERE book_id IN (%s)`,
		strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgReviewRepository.RatingsByBook query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID string
		var rating int
		if err := rows.Scan(&bookID, &rating); err != nil {
			return nil, fmt.Errorf("pgReviewRepository.RatingsByBook scan: %w", err)
		}
		ratings[bookID] = append(ratings[bookID], rating)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgReviewRepository.RatingsByBook rows.Err: %w", err)
	}
	return ratings, nil
}
