package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/biblio/biblio/internal/model"
)

// Common errors for book repository operations.
var (
	ErrBookNotFound = errors.New("book not found")
	ErrBookBorrowed = errors.New("book is currently borrowed")
)

// BookFilter defines filters for listing books.
type BookFilter struct {
	GenreName  string // exact genre name
	Author     string // substring match
	IsBorrowed *bool
	Search     string // free text over title and author
	OrderBy    string // title, author, published_at; "-" prefix for descending
}

// orderableBookColumns whitelists columns accepted for ordering.
var orderableBookColumns = map[string]string{
	"title":        "b.title",
	"author":       "b.author",
	"published_at": "b.published_at",
}

const bookColumns = `
	b.id, b.title, b.author, b.description, b.genre_id, COALESCE(g.name, ''),
	b.is_borrowed, b.published_at, b.created_at, b.updated_at
`

// CreateBook inserts a new book into the database.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, title, author, description, genre_id, is_borrowed, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.GenreID,
		book.IsBorrowed,
		book.PublishedAt,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrGenreNotFound
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetBookByID retrieves a book by its ID with its genre name resolved.
func (r *Repository) GetBookByID(ctx context.Context, id string) (*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books b
		LEFT JOIN genres g ON g.id = b.genre_id
		WHERE b.id = $1
	`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// ListBooks retrieves books matching the filter.
func (r *Repository) ListBooks(ctx context.Context, filter BookFilter) ([]*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books b
		LEFT JOIN genres g ON g.id = b.genre_id
		WHERE TRUE
	`
	var args []any
	argIndex := 1

	if filter.GenreName != "" {
		query += fmt.Sprintf(" AND g.name = $%d", argIndex)
		args = append(args, filter.GenreName)
		argIndex++
	}

	if filter.Author != "" {
		query += fmt.Sprintf(" AND b.author ILIKE '%%' || $%d || '%%'", argIndex)
		args = append(args, filter.Author)
		argIndex++
	}

	if filter.IsBorrowed != nil {
		query += fmt.Sprintf(" AND b.is_borrowed = $%d", argIndex)
		args = append(args, *filter.IsBorrowed)
		argIndex++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (b.title ILIKE '%%' || $%d || '%%' OR b.author ILIKE '%%' || $%d || '%%')", argIndex, argIndex)
		args = append(args, filter.Search)
		argIndex++
	}

	query += " ORDER BY " + bookOrderClause(filter.OrderBy)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// UpdateBook updates a book's catalog fields.
// is_borrowed is deliberately absent: the flag is a projection over the
// borrow ledger and is written only by the borrow/return transaction.
func (r *Repository) UpdateBook(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, description = $4, genre_id = $5, published_at = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.GenreID,
		book.PublishedAt,
		book.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrGenreNotFound
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// DeleteBook removes a book. Deletion is rejected while the book is
// borrowed; closed ledger rows cascade with the book.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM books WHERE id = $1 AND NOT is_borrowed`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing book from a borrowed one.
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check book existence: %w", err)
		}
		if exists {
			return ErrBookBorrowed
		}
		return ErrBookNotFound
	}

	return nil
}

// bookOrderClause maps an ordering parameter to a safe ORDER BY clause.
// Unknown columns fall back to the default title ordering.
func bookOrderClause(orderBy string) string {
	direction := "ASC"
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		orderBy = orderBy[1:]
	}

	column, ok := orderableBookColumns[orderBy]
	if !ok {
		column = "b.title"
		direction = "ASC"
	}

	return fmt.Sprintf("%s %s, b.id ASC", column, direction)
}

// scanBook scans a book row from a query result.
func scanBook(row pgx.Row) (*model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.GenreID,
		&book.GenreName,
		&book.IsBorrowed,
		&book.PublishedAt,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &book, nil
}
