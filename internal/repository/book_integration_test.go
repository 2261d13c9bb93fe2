//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biblio/biblio/internal/model"
	"github.com/biblio/biblio/internal/testutil"
)

// ============================================================================
// Catalog Integration Tests
// ============================================================================

func mustCreateGenre(t *testing.T, ctx context.Context, repo *Repository, name string) *model.Genre {
	t.Helper()
	genre := testutil.NewTestGenre(t, name)
	if err := repo.CreateGenre(ctx, genre); err != nil {
		t.Fatalf("CreateGenre failed: %v", err)
	}
	return genre
}

func TestIntegrationBook_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	genre := mustCreateGenre(t, ctx, repo, "Science Fiction")
	book := testutil.NewTestBook(t, "Solaris")
	book.GenreID = &genre.ID

	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	retrieved, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBookByID failed: %v", err)
	}

	if retrieved.Title != "Solaris" {
		t.Errorf("Title mismatch: got %q", retrieved.Title)
	}
	if retrieved.GenreName != "Science Fiction" {
		t.Errorf("expected resolved genre name, got %q", retrieved.GenreName)
	}
	if retrieved.IsBorrowed {
		t.Error("new book should be available")
	}
}

func TestIntegrationBook_CreateWithUnknownGenre(t *testing.T) {
	ctx, repo := newTestEnv(t)

	book := testutil.NewTestBook(t, "Orphan")
	unknown := "no-such-genre"
	book.GenreID = &unknown

	if err := repo.CreateBook(ctx, book); !errors.Is(err, ErrGenreNotFound) {
		t.Errorf("expected ErrGenreNotFound, got: %v", err)
	}
}

func TestIntegrationBook_ListFilters(t *testing.T) {
	ctx, repo := newTestEnv(t)

	scifi := mustCreateGenre(t, ctx, repo, "Science Fiction")
	detective := mustCreateGenre(t, ctx, repo, "Detective")

	odyssey := testutil.NewTestBook(t, "2001: A Space Odyssey")
	odyssey.Author = "Arthur C. Clarke"
	odyssey.GenreID = &scifi.ID
	odyssey.PublishedAt = time.Date(1968, 7, 1, 0, 0, 0, 0, time.UTC)

	holmes := testutil.NewTestBook(t, "Sherlock Holmes")
	holmes.Author = "Arthur Conan Doyle"
	holmes.GenreID = &detective.ID
	holmes.PublishedAt = time.Date(1892, 10, 14, 0, 0, 0, 0, time.UTC)

	for _, book := range []*model.Book{odyssey, holmes} {
		if err := repo.CreateBook(ctx, book); err != nil {
			t.Fatalf("CreateBook failed: %v", err)
		}
	}

	user := mustCreateUser(t, ctx, repo)
	if err := repo.CreateBorrow(ctx, newBorrowRecord(user, holmes)); err != nil {
		t.Fatalf("CreateBorrow failed: %v", err)
	}

	t.Run("by genre name", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, BookFilter{GenreName: "Science Fiction"})
		if err != nil {
			t.Fatalf("ListBooks failed: %v", err)
		}
		if len(books) != 1 || books[0].ID != odyssey.ID {
			t.Errorf("expected only the odyssey, got %d books", len(books))
		}
	})

	t.Run("by author substring", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, BookFilter{Author: "arthur"})
		if err != nil {
			t.Fatalf("ListBooks failed: %v", err)
		}
		if len(books) != 2 {
			t.Errorf("expected both books, got %d", len(books))
		}
	})

	t.Run("by availability", func(t *testing.T) {
		borrowed := true
		books, err := repo.ListBooks(ctx, BookFilter{IsBorrowed: &borrowed})
		if err != nil {
			t.Fatalf("ListBooks failed: %v", err)
		}
		if len(books) != 1 || books[0].ID != holmes.ID {
			t.Errorf("expected only holmes, got %d books", len(books))
		}
	})

	t.Run("search over title and author", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, BookFilter{Search: "odyssey"})
		if err != nil {
			t.Fatalf("ListBooks failed: %v", err)
		}
		if len(books) != 1 || books[0].ID != odyssey.ID {
			t.Errorf("expected only the odyssey, got %d books", len(books))
		}
	})

	t.Run("ordering descending", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, BookFilter{OrderBy: "-published_at"})
		if err != nil {
			t.Fatalf("ListBooks failed: %v", err)
		}
		if len(books) != 2 {
			t.Fatalf("expected 2 books, got %d", len(books))
		}
		if books[0].ID != odyssey.ID {
			t.Error("expected newest publication first")
		}
	})

	t.Run("unknown ordering falls back to title", func(t *testing.T) {
		books, err := repo.ListBooks(ctx, BookFilter{OrderBy: "genre; DROP TABLE books"})
		if err != nil {
			t.Fatalf("ListBooks failed: %v", err)
		}
		if len(books) != 2 {
			t.Fatalf("expected 2 books, got %d", len(books))
		}
		if books[0].ID != odyssey.ID {
			t.Error("expected title ordering fallback")
		}
	})
}

func TestIntegrationBook_UpdateKeepsBorrowFlag(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := mustCreateUser(t, ctx, repo)
	book := mustCreateBook(t, ctx, repo, "Before Edit")

	if err := repo.CreateBorrow(ctx, newBorrowRecord(user, book)); err != nil {
		t.Fatalf("CreateBorrow failed: %v", err)
	}

	book.Title = "After Edit"
	book.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateBook(ctx, book); err != nil {
		t.Fatalf("UpdateBook failed: %v", err)
	}

	retrieved, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBookByID failed: %v", err)
	}
	if retrieved.Title != "After Edit" {
		t.Errorf("Title mismatch: got %q", retrieved.Title)
	}
	if !retrieved.IsBorrowed {
		t.Error("catalog update must not clear the borrow flag")
	}
}

func TestIntegrationBook_DeleteBorrowedRejected(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := mustCreateUser(t, ctx, repo)
	book := mustCreateBook(t, ctx, repo, "Held")

	if err := repo.CreateBorrow(ctx, newBorrowRecord(user, book)); err != nil {
		t.Fatalf("CreateBorrow failed: %v", err)
	}

	if err := repo.DeleteBook(ctx, book.ID); !errors.Is(err, ErrBookBorrowed) {
		t.Errorf("expected ErrBookBorrowed, got: %v", err)
	}

	if _, err := repo.CloseBorrow(ctx, user.ID, book.ID, time.Now().UTC()); err != nil {
		t.Fatalf("CloseBorrow failed: %v", err)
	}

	if err := repo.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook after return failed: %v", err)
	}

	if _, err := repo.GetBookByID(ctx, book.ID); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound after delete, got: %v", err)
	}
}

func TestIntegrationBook_DeleteNotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	if err := repo.DeleteBook(ctx, "nonexistent"); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got: %v", err)
	}
}

func TestIntegrationGenre_DuplicateName(t *testing.T) {
	ctx, repo := newTestEnv(t)

	mustCreateGenre(t, ctx, repo, "Romance")

	dup := testutil.NewTestGenre(t, "Romance")
	if err := repo.CreateGenre(ctx, dup); !errors.Is(err, ErrGenreNameExists) {
		t.Errorf("expected ErrGenreNameExists, got: %v", err)
	}
}

func TestIntegrationGenre_DeleteInUse(t *testing.T) {
	ctx, repo := newTestEnv(t)

	genre := mustCreateGenre(t, ctx, repo, "History")
	book := testutil.NewTestBook(t, "World War II")
	book.GenreID = &genre.ID
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	if err := repo.DeleteGenre(ctx, genre.ID); !errors.Is(err, ErrGenreInUse) {
		t.Errorf("expected ErrGenreInUse, got: %v", err)
	}

	if err := repo.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}
	if err := repo.DeleteGenre(ctx, genre.ID); err != nil {
		t.Fatalf("DeleteGenre after freeing failed: %v", err)
	}
}
