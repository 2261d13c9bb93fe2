package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biblio/biblio/internal/model"
	"github.com/biblio/biblio/internal/repository"
)

// Catalog service errors.
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookBorrowed    = errors.New("book is currently borrowed")
	ErrGenreNotFound   = errors.New("genre not found")
	ErrGenreNameExists = errors.New("genre name already exists")
	ErrGenreInUse      = errors.New("genre is referenced by books")
)

const (
	maxTitleLength  = 200
	maxAuthorLength = 100
	maxGenreLength  = 50
)

// CatalogService handles book and genre management.
type CatalogService struct {
	repo *repository.Repository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo *repository.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

// BookInput defines input for creating or updating a book.
type BookInput struct {
	Title       string
	Author      string
	Description string
	GenreID     string
	PublishedAt *time.Time
}

// ListBooksInput defines filters for listing books.
type ListBooksInput struct {
	GenreName  string
	Author     string
	IsBorrowed *bool
	Search     string
	OrderBy    string
}

// CreateBook adds a book to the catalog. New books start available.
func (s *CatalogService) CreateBook(ctx context.Context, input BookInput) (*model.Book, error) {
	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	publishedAt := now
	if input.PublishedAt != nil {
		publishedAt = input.PublishedAt.UTC()
	}

	book := &model.Book{
		ID:          newID(),
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		Description: strings.TrimSpace(input.Description),
		IsBorrowed:  false,
		PublishedAt: publishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.GenreID != "" {
		genreID := input.GenreID
		book.GenreID = &genreID
	}

	if err := s.repo.CreateBook(ctx, book); err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	// Resolve the genre name for the response.
	if book.GenreID != nil {
		if genre, err := s.repo.GetGenreByID(ctx, *book.GenreID); err == nil {
			book.GenreName = genre.Name
		}
	}

	return book, nil
}

// GetBook retrieves a single book.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	book, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// ListBooks retrieves books matching the filters.
func (s *CatalogService) ListBooks(ctx context.Context, input ListBooksInput) ([]*model.Book, error) {
	filter := repository.BookFilter{
		GenreName:  strings.TrimSpace(input.GenreName),
		Author:     strings.TrimSpace(input.Author),
		IsBorrowed: input.IsBorrowed,
		Search:     strings.TrimSpace(input.Search),
		OrderBy:    strings.TrimSpace(input.OrderBy),
	}

	books, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// UpdateBook replaces a book's catalog fields. The borrow flag is out of
// reach of this path; only the borrow/return protocol writes it.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, input BookInput) (*model.Book, error) {
	if err := validateBookInput(input); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Title = strings.TrimSpace(input.Title)
	book.Author = strings.TrimSpace(input.Author)
	book.Description = strings.TrimSpace(input.Description)
	book.UpdatedAt = time.Now().UTC()
	if input.PublishedAt != nil {
		book.PublishedAt = input.PublishedAt.UTC()
	}

	book.GenreID = nil
	book.GenreName = ""
	if input.GenreID != "" {
		genreID := input.GenreID
		book.GenreID = &genreID
	}

	if err := s.repo.UpdateBook(ctx, book); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrGenreNotFound):
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	if book.GenreID != nil {
		if genre, err := s.repo.GetGenreByID(ctx, *book.GenreID); err == nil {
			book.GenreName = genre.Name
		}
	}

	return book, nil
}

// DeleteBook removes a book from the catalog.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return ErrBookNotFound
		case errors.Is(err, repository.ErrBookBorrowed):
			return ErrBookBorrowed
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// CreateGenre adds a genre.
func (s *CatalogService) CreateGenre(ctx context.Context, name string) (*model.Genre, error) {
	if err := validateGenreName(name); err != nil {
		return nil, err
	}

	genre := &model.Genre{
		ID:        newID(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateGenre(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrGenreNameExists) {
			return nil, ErrGenreNameExists
		}
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}

	return genre, nil
}

// GetGenre retrieves a single genre.
func (s *CatalogService) GetGenre(ctx context.Context, id string) (*model.Genre, error) {
	genre, err := s.repo.GetGenreByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return genre, nil
}

// ListGenres retrieves all genres.
func (s *CatalogService) ListGenres(ctx context.Context) ([]*model.Genre, error) {
	genres, err := s.repo.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// UpdateGenre renames a genre.
func (s *CatalogService) UpdateGenre(ctx context.Context, id, name string) (*model.Genre, error) {
	if err := validateGenreName(name); err != nil {
		return nil, err
	}

	genre := &model.Genre{ID: id, Name: strings.TrimSpace(name)}

	if err := s.repo.UpdateGenre(ctx, genre); err != nil {
		switch {
		case errors.Is(err, repository.ErrGenreNotFound):
			return nil, ErrGenreNotFound
		case errors.Is(err, repository.ErrGenreNameExists):
			return nil, ErrGenreNameExists
		}
		return nil, fmt.Errorf("failed to update genre: %w", err)
	}

	return s.GetGenre(ctx, id)
}

// DeleteGenre removes a genre. Genres still referenced by books are
// protected; the delete is rejected instead of leaving dangling
// references.
func (s *CatalogService) DeleteGenre(ctx context.Context, id string) error {
	if err := s.repo.DeleteGenre(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrGenreNotFound):
			return ErrGenreNotFound
		case errors.Is(err, repository.ErrGenreInUse):
			return ErrGenreInUse
		}
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	return nil
}

// validateBookInput checks required fields and lengths.
func validateBookInput(input BookInput) error {
	errs := ValidationError{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		errs["title"] = "This field is required."
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("Must be at most %d characters.", maxTitleLength)
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		errs["author"] = "This field is required."
	} else if len(author) > maxAuthorLength {
		errs["author"] = fmt.Sprintf("Must be at most %d characters.", maxAuthorLength)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateGenreName checks the genre name constraint.
func validateGenreName(name string) error {
	errs := ValidationError{}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		errs["name"] = "This field is required."
	} else if len(trimmed) > maxGenreLength {
		errs["name"] = fmt.Sprintf("Must be at most %d characters.", maxGenreLength)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
