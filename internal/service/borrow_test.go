package service

import (
	"context"
	"errors"
	"testing"

	"github.com/biblio/biblio/internal/model"
)

// Authorization is checked before any store access, so a zero-value
// service is enough to exercise the deny paths.

func TestListActiveBorrows_Forbidden(t *testing.T) {
	svc := &BorrowService{}

	tests := []struct {
		name   string
		caller *model.AuthContext
	}{
		{"unauthenticated", nil},
		{"other_member", &model.AuthContext{UserID: "u-other", Roles: []string{model.RoleMember}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.ListActiveBorrows(context.Background(), test.caller, "u-subject")
			if !errors.Is(err, ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestListHistory_Forbidden(t *testing.T) {
	svc := &BorrowService{}

	caller := &model.AuthContext{UserID: "u-other", Roles: []string{model.RoleMember}}

	_, err := svc.ListHistory(context.Background(), caller, "u-subject")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
