package dto

import (
	"time"

	"github.com/biblio/biblio/internal/model"
)

// GenreRequest represents the request body for creating or updating a genre.
type GenreRequest struct {
	Name string `json:"name"`
}

// GenreResponse represents a genre in API responses.
type GenreResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToGenreResponse converts a Genre model to GenreResponse DTO.
func ToGenreResponse(genre *model.Genre) *GenreResponse {
	return &GenreResponse{
		ID:        genre.ID,
		Name:      genre.Name,
		CreatedAt: genre.CreatedAt,
	}
}

// ToGenreListResponse converts a slice of Genre models.
func ToGenreListResponse(genres []*model.Genre) []GenreResponse {
	responses := make([]GenreResponse, len(genres))
	for i, genre := range genres {
		responses[i] = *ToGenreResponse(genre)
	}
	return responses
}
