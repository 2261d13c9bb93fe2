package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/biblio/biblio/internal/model"
)

// Common errors for genre repository operations.
var (
	ErrGenreNotFound   = errors.New("genre not found")
	ErrGenreNameExists = errors.New("genre name already exists")
	ErrGenreInUse      = errors.New("genre is referenced by books")
)

// CreateGenre inserts a new genre into the database.
func (r *Repository) CreateGenre(ctx context.Context, genre *model.Genre) error {
	query := `
		INSERT INTO genres (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, genre.ID, genre.Name, genre.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGenreNameExists
		}
		return fmt.Errorf("failed to create genre: %w", err)
	}

	return nil
}

// GetGenreByID retrieves a genre by its ID.
func (r *Repository) GetGenreByID(ctx context.Context, id string) (*model.Genre, error) {
	query := `
		SELECT id, name, created_at
		FROM genres
		WHERE id = $1
	`

	var genre model.Genre
	err := r.pool.QueryRow(ctx, query, id).Scan(&genre.ID, &genre.Name, &genre.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to get genre by ID: %w", err)
	}

	return &genre, nil
}

// ListGenres retrieves all genres ordered by name.
func (r *Repository) ListGenres(ctx context.Context) ([]*model.Genre, error) {
	query := `
		SELECT id, name, created_at
		FROM genres
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	var genres []*model.Genre
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, &genre)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genres: %w", err)
	}

	return genres, nil
}

// UpdateGenre renames a genre.
func (r *Repository) UpdateGenre(ctx context.Context, genre *model.Genre) error {
	query := `
		UPDATE genres
		SET name = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, genre.ID, genre.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGenreNameExists
		}
		return fmt.Errorf("failed to update genre: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGenreNotFound
	}

	return nil
}

// DeleteGenre removes a genre. The books.genre_id foreign key is
// ON DELETE RESTRICT, so deleting a referenced genre fails.
func (r *Repository) DeleteGenre(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrGenreInUse
		}
		return fmt.Errorf("failed to delete genre: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGenreNotFound
	}

	return nil
}
