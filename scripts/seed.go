// Seeds the database with sample users, genres, books and borrow
// history for local development.
//
// Usage:
//
//	go run scripts/seed.go -database-url "$DATABASE_URL"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/model"
	"github.com/biblio/biblio/internal/repository"
)

func main() {
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := seed(ctx, repo); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Println("Sample data successfully created!")
	fmt.Println("Admin login: admin@example.com / adminpassword")
}

func seed(ctx context.Context, repo *repository.Repository) error {
	now := time.Now().UTC()

	admin, err := newUser("Admin", "admin@example.com", "adminpassword", []string{model.RoleAdmin, model.RoleMember}, now)
	if err != nil {
		return err
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	users := make([]*model.User, 0, 5)
	for i := 1; i <= 5; i++ {
		user, err := newUser(
			fmt.Sprintf("User%d", i),
			fmt.Sprintf("user%d@example.com", i),
			fmt.Sprintf("password%d", i),
			[]string{model.RoleMember},
			now,
		)
		if err != nil {
			return err
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user %s: %w", user.Email, err)
		}
		users = append(users, user)
	}

	genreNames := []string{"Science Fiction", "Detective", "Science", "Romance", "History"}
	genres := make([]*model.Genre, 0, len(genreNames))
	for _, name := range genreNames {
		genre := &model.Genre{
			ID:        ulid.Make().String(),
			Name:      name,
			CreatedAt: now,
		}
		if err := repo.CreateGenre(ctx, genre); err != nil {
			return fmt.Errorf("create genre %s: %w", name, err)
		}
		genres = append(genres, genre)
	}

	bookData := []struct {
		title       string
		author      string
		description string
		publishedAt time.Time
	}{
		{"2001: A Space Odyssey", "Arthur C. Clarke", "A science fiction story about space exploration.", date(1968, 7, 1)},
		{"Sherlock Holmes", "Arthur Conan Doyle", "Detective stories featuring Sherlock Holmes.", date(1892, 10, 14)},
		{"The Feynman Lectures on Physics", "Richard Feynman", "Popular science physics lectures.", date(1964, 1, 1)},
		{"Pride and Passion", "Jane Austen", "A romantic novel.", date(1813, 1, 28)},
		{"World War II", "John Kennedy", "A historical study of the Second World War.", date(1961, 5, 1)},
	}

	books := make([]*model.Book, 0, len(bookData))
	for i, data := range bookData {
		book := &model.Book{
			ID:          ulid.Make().String(),
			Title:       data.title,
			Author:      data.author,
			Description: data.description,
			GenreID:     &genres[i].ID,
			PublishedAt: data.publishedAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.CreateBook(ctx, book); err != nil {
			return fmt.Errorf("create book %s: %w", book.Title, err)
		}
		books = append(books, book)
	}

	// Mixed borrow history: even-indexed books stay out, odd ones are
	// returned the next day.
	for i := 0; i < 5; i++ {
		record := &model.BorrowRecord{
			ID:         ulid.Make().String(),
			UserID:     users[i].ID,
			BookID:     books[i].ID,
			BorrowedAt: now.AddDate(0, 0, -i*2),
		}
		if err := repo.CreateBorrow(ctx, record); err != nil {
			return fmt.Errorf("create borrow for %s: %w", books[i].Title, err)
		}

		if i%2 != 0 {
			returnedAt := record.BorrowedAt.AddDate(0, 0, 1)
			if _, err := repo.CloseBorrow(ctx, users[i].ID, books[i].ID, returnedAt); err != nil {
				return fmt.Errorf("close borrow for %s: %w", books[i].Title, err)
			}
		}
	}

	return nil
}

func newUser(name, email, password string, roles []string, now time.Time) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", email, err)
	}

	return &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
