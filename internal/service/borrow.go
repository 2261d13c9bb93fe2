package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/model"
	"github.com/biblio/biblio/internal/repository"
)

// Borrow service errors.
var (
	// ErrAlreadyBorrowed is returned when the book has an active borrow.
	ErrAlreadyBorrowed = errors.New("the book has already been taken")
	// ErrNotBorrowedByUser is returned when the caller has no active
	// borrow for the book. Another user's active borrow is deliberately
	// indistinguishable from "never borrowed".
	ErrNotBorrowedByUser = errors.New("you didn't take this book")
	// ErrForbidden is returned when a caller reads another user's
	// borrow data without the admin role.
	ErrForbidden = errors.New("forbidden")
)

// BorrowService coordinates the catalog and the borrow ledger.
//
// The book's is_borrowed flag and the ledger are written together in a
// single repository transaction, so the flag always equals "an active
// record exists", including under concurrent borrow attempts.
type BorrowService struct {
	repo *repository.Repository
}

// NewBorrowService creates a new BorrowService.
func NewBorrowService(repo *repository.Repository) *BorrowService {
	return &BorrowService{repo: repo}
}

// Borrow transitions a book from Available to Borrowed for the given user.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID string) (*model.BorrowRecord, error) {
	record := &model.BorrowRecord{
		ID:         newID(),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateBorrow(ctx, record); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrAlreadyBorrowed):
			return nil, ErrAlreadyBorrowed
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to borrow book: %w", err)
	}

	return record, nil
}

// Return closes the caller's active borrow for a book.
func (s *BorrowService) Return(ctx context.Context, userID, bookID string) (*model.BorrowRecord, error) {
	record, err := s.repo.CloseBorrow(ctx, userID, bookID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrNotBorrowedByUser):
			return nil, ErrNotBorrowedByUser
		}
		return nil, fmt.Errorf("failed to return book: %w", err)
	}

	return record, nil
}

// ListActiveBorrows returns the books the subject user currently has
// out. The caller must be the subject or an admin.
func (s *BorrowService) ListActiveBorrows(ctx context.Context, caller *model.AuthContext, userID string) ([]*model.Book, error) {
	if err := auth.Authorize(caller, userID, false); err != nil {
		return nil, ErrForbidden
	}

	books, err := s.repo.ListActiveBorrowedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active borrows: %w", err)
	}
	return books, nil
}

// ListHistory returns the subject user's full borrow history, newest
// first. The caller must be the subject or an admin. The subject user
// must exist.
func (s *BorrowService) ListHistory(ctx context.Context, caller *model.AuthContext, userID string) ([]*model.BorrowRecord, error) {
	if err := auth.Authorize(caller, userID, false); err != nil {
		return nil, ErrForbidden
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	records, err := s.repo.ListBorrowHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrow history: %w", err)
	}
	return records, nil
}
