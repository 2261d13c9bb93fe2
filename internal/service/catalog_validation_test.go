package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateBook_ValidationErrors(t *testing.T) {
	svc := &CatalogService{}

	tests := []struct {
		name      string
		input     BookInput
		wantField string
	}{
		{
			name:      "missing_title",
			input:     BookInput{Author: "Frank Herbert"},
			wantField: "title",
		},
		{
			name:      "missing_author",
			input:     BookInput{Title: "Dune"},
			wantField: "author",
		},
		{
			name:      "title_too_long",
			input:     BookInput{Title: strings.Repeat("x", maxTitleLength+1), Author: "A"},
			wantField: "title",
		},
		{
			name:      "whitespace_only_title",
			input:     BookInput{Title: "   ", Author: "A"},
			wantField: "title",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateBook(context.Background(), test.input)

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr[test.wantField]; !ok {
				t.Errorf("expected error for field %q, got %v", test.wantField, verr)
			}
		})
	}
}

func TestCreateGenre_ValidationErrors(t *testing.T) {
	svc := &CatalogService{}

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too_long", strings.Repeat("x", maxGenreLength+1)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateGenre(context.Background(), test.input)

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{"title": "This field is required.", "author": "This field is required."}

	msg := err.Error()
	if !strings.Contains(msg, "author") || !strings.Contains(msg, "title") {
		t.Errorf("unexpected message: %s", msg)
	}
}
