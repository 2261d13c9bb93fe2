package model

import "time"

// BorrowRecord represents one borrow event in the ledger.
//
// A record with ReturnedAt == nil is active; at most one active record
// may exist per book. Once closed, a record is immutable and is never
// deleted: the ledger is the durable borrow history.
type BorrowRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`

	// Book is the resolved book for history responses. Optional.
	Book *Book `json:"book,omitempty"`
}

// IsActive returns true if the record has not been closed yet.
func (r *BorrowRecord) IsActive() bool {
	return r.ReturnedAt == nil
}
