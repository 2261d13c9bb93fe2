package model

import "time"

// Book represents a book in the library catalog.
//
// IsBorrowed is a projection over the borrow ledger: it must equal
// "an active borrow record exists for this book". It is written only
// by the borrow/return transaction, never by catalog updates.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	GenreID     *string   `json:"genre_id,omitempty"`
	GenreName   string    `json:"genre,omitempty"` // Resolved on read, not stored
	IsBorrowed  bool      `json:"is_borrowed"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Available returns true if the book can currently be borrowed.
func (b *Book) Available() bool {
	return !b.IsBorrowed
}
