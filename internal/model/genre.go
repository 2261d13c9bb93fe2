package model

import "time"

// Genre represents a book genre/category.
// Books reference a genre by identity; the reference is optional.
type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
