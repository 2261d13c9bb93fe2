package dto

import (
	"time"

	"github.com/biblio/biblio/internal/model"
)

// BookRequest represents the request body for creating or updating a book.
type BookRequest struct {
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description string     `json:"description,omitempty"`
	Genre       string     `json:"genre,omitempty"` // genre id
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	GenreID     string    `json:"genre_id,omitempty"`
	IsBorrowed  bool      `json:"is_borrowed"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToBookResponse converts a Book model to BookResponse DTO.
func ToBookResponse(book *model.Book) *BookResponse {
	response := &BookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		Genre:       book.GenreName,
		IsBorrowed:  book.IsBorrowed,
		PublishedAt: book.PublishedAt,
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	}
	if book.GenreID != nil {
		response.GenreID = *book.GenreID
	}
	return response
}

// ToBookListResponse converts a slice of Book models.
func ToBookListResponse(books []*model.Book) []BookResponse {
	responses := make([]BookResponse, len(books))
	for i, book := range books {
		responses[i] = *ToBookResponse(book)
	}
	return responses
}
