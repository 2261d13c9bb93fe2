package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/biblio/biblio/internal/model"
)

// Common errors for borrow repository operations.
var (
	ErrAlreadyBorrowed   = errors.New("book is already borrowed")
	ErrNotBorrowedByUser = errors.New("no active borrow for this user and book")
)

// CreateBorrow executes the borrow transition as a single transaction.
//
// The availability check and the flag write are one conditional UPDATE:
// two concurrent borrows for the same book cannot both see zero rows
// affected as success, so at most one active record per book can ever
// be created. The ledger insert rides in the same transaction, keeping
// the is_borrowed projection consistent with the ledger.
func (r *Repository) CreateBorrow(ctx context.Context, record *model.BorrowRecord) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE books SET is_borrowed = TRUE, updated_at = $2 WHERE id = $1 AND NOT is_borrowed`,
		record.BookID, record.BorrowedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark book borrowed: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the book does not exist or it is already borrowed.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, record.BookID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check book existence: %w", err)
		}
		if !exists {
			return ErrBookNotFound
		}
		return ErrAlreadyBorrowed
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO borrow_records (id, user_id, book_id, borrowed_at) VALUES ($1, $2, $3, $4)`,
		record.ID, record.UserID, record.BookID, record.BorrowedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to insert borrow record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit borrow: %w", err)
	}

	return nil
}

// CloseBorrow executes the return transition as a single transaction.
//
// Only an active record owned by the calling user can be closed; another
// user's active borrow is invisible to this caller. The closed record is
// immutable afterwards (the WHERE clause only ever matches open records).
func (r *Repository) CloseBorrow(ctx context.Context, userID, bookID string, returnedAt time.Time) (*model.BorrowRecord, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	record := &model.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		ReturnedAt: &returnedAt,
	}

	err = tx.QueryRow(ctx, `
		UPDATE borrow_records
		SET returned_at = $3
		WHERE book_id = $1 AND user_id = $2 AND returned_at IS NULL
		RETURNING id, borrowed_at
	`, bookID, userID, returnedAt).Scan(&record.ID, &record.BorrowedAt)

	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to close borrow record: %w", err)
		}
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check book existence: %w", err)
		}
		if !exists {
			return nil, ErrBookNotFound
		}
		return nil, ErrNotBorrowedByUser
	}

	_, err = tx.Exec(ctx,
		`UPDATE books SET is_borrowed = FALSE, updated_at = $2 WHERE id = $1`,
		bookID, returnedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark book available: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit return: %w", err)
	}

	return record, nil
}

// ListActiveBorrowedBooks retrieves the books a user currently has out.
func (r *Repository) ListActiveBorrowedBooks(ctx context.Context, userID string) ([]*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM borrow_records br
		JOIN books b ON b.id = br.book_id
		LEFT JOIN genres g ON g.id = b.genre_id
		WHERE br.user_id = $1 AND br.returned_at IS NULL
		ORDER BY br.borrowed_at DESC, br.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowed books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrowed book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating borrowed books: %w", err)
	}

	return books, nil
}

// ListBorrowHistory retrieves all borrow records for a user, newest
// first, with the referenced book resolved.
func (r *Repository) ListBorrowHistory(ctx context.Context, userID string) ([]*model.BorrowRecord, error) {
	query := `
		SELECT br.id, br.user_id, br.book_id, br.borrowed_at, br.returned_at, ` + bookColumns + `
		FROM borrow_records br
		JOIN books b ON b.id = br.book_id
		LEFT JOIN genres g ON g.id = b.genre_id
		WHERE br.user_id = $1
		ORDER BY br.borrowed_at DESC, br.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrow history: %w", err)
	}
	defer rows.Close()

	var records []*model.BorrowRecord
	for rows.Next() {
		var record model.BorrowRecord
		var book model.Book
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.BookID,
			&record.BorrowedAt,
			&record.ReturnedAt,
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
			return nil, fmt.Errorf("failed to scan borrow record: %w", err)
		}
		record.Book = &book
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating borrow history: %w", err)
	}

	return records, nil
}

// CountActiveBorrows returns the number of open records for a book.
// Used by invariant checks in tests; the steady-state value is 0 or 1.
func (r *Repository) CountActiveBorrows(ctx context.Context, bookID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE book_id = $1 AND returned_at IS NULL`,
		bookID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active borrows: %w", err)
	}
	return count, nil
}
