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

// BookFilter narrows a listing. Author and Search are case-insensitive
// substring matches (Search spans title OR author); Genre matches exactly.
type BookFilter struct {
	Author string
	Genre  string
	Search string
}

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context, filter BookFilter, limit, offset int) ([]model.Book, int, error)
}

type pgBookRepository struct {
	db *sql.DB
}

func NewPgBookRepository(db *sql.DB) BookRepository {
	return &pgBookRepository{db: db}
}

func (r *pgBookRepository) Create(ctx context.Context, b *model.Book) error {
	query := `INSERT INTO books (id, title, slug, author, genre, description, published_year, isbn, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		b.ID, b.Title, b.Slug, b.Author, b.Genre, b.Description, b.PublishedYear, b.ISBN, b.CreatedByID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // books_isbn_key
			return common.WithMessage(common.ErrDuplicate, "ISBN already exists")
		}
		return fmt.Errorf("pgBookRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBookRepository) FindByID(ctx context.Context, id string) (*model.Book, error) {
	query := `SELECT b.id, b.title, b.slug, b.author, b.genre, b.description,
	                 b.published_year, b.isbn, b.created_by, u.name, u.email,
	                 b.created_at, b.updated_at
	          FROM books b
	          JOIN users u ON b.created_by = u.id
	          WHERE b.id = $1`
	book := &model.Book{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID, &book.Title, &book.Slug, &book.Author, &book.Genre, &book.Description,
		&book.PublishedYear, &book.ISBN, &book.CreatedByID, &book.CreatedByName, &book.CreatedByEmail,
		&book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBookRepository.FindByID: %w", err)
	}
	return book, nil
}

func (r *pgBookRepository) List(ctx context.Context, filter BookFilter, limit, offset int) ([]model.Book, int, error) {
	var baseQuery strings.Builder
	baseQuery.WriteString(`
        SELECT b.id, b.title, b.slug, b.author, b.genre, b.description,
               b.published_year, b.isbn, b.created_by, u.name, u.email,
               b.created_at, b.updated_at
        FROM books b
        JOIN users u ON b.created_by = u.id`)

	var countQuery strings.Builder
	countQuery.WriteString(`SELECT COUNT(*) FROM books b`)

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Author != "" {
		conditions = append(conditions, fmt.Sprintf("b.author ILIKE $%d", argID))
		args = append(args, "%"+filter.Author+"%")
		argID++
	}

	if filter.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("b.genre = $%d", argID))
		args = append(args, filter.Genre)
		argID++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d)", argID, argID+1))
		likeTerm := "%" + filter.Search + "%"
		args = append(args, likeTerm, likeTerm)
		argID += 2
	}

	if len(conditions) > 0 {
		whereClause := " WHERE " + strings.Join(conditions, " AND ")
		baseQuery.WriteString(whereClause)
		countQuery.WriteString(whereClause)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery.String(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgBookRepository.List count: %w", err)
	}

	baseQuery.WriteString(fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgBookRepository.List query: %w", err)
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Slug, &b.Author, &b.Genre, &b.Description,
			&b.PublishedYear, &b.ISBN, &b.CreatedByID, &b.CreatedByName, &b.CreatedByEmail,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgBookRepository.List scan: %w", err)
		}
		books = append(books, b)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgBookRepository.List rows.Err: %w", err)
	}

	return books, total, nil
}
