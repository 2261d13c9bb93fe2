package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/model"
	"github.com/biblio/biblio/internal/repository"
)

// User service errors.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserHasActiveBorrows = errors.New("user has active borrows")
)

// UserService handles admin user management.
type UserService struct {
	repo *repository.Repository
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// UpdateUserInput defines input for an admin user edit.
// Nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Roles    []string
	Password *string
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser retrieves a single user.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUser applies an admin edit. Borrow state is never touched here.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	if err := validateUpdateUserInput(input); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.Roles != nil {
		user.Roles = input.Roles
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user unless they hold an active borrow.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrUserHasActiveBorrows):
			return ErrUserHasActiveBorrows
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// validateUpdateUserInput checks the provided fields.
func validateUpdateUserInput(input UpdateUserInput) error {
	errs := ValidationError{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			errs["name"] = "This field may not be blank."
		} else if len(name) > maxNameLength {
			errs["name"] = fmt.Sprintf("Must be at most %d characters.", maxNameLength)
		}
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			errs["email"] = "This field may not be blank."
		} else if _, err := mail.ParseAddress(email); err != nil {
			errs["email"] = "Enter a valid email address."
		}
	}

	if input.Roles != nil {
		for _, role := range input.Roles {
			if !slices.Contains(model.ValidRoles, role) {
				errs["roles"] = fmt.Sprintf("%q is not a valid role.", role)
				break
			}
		}
	}

	if input.Password != nil && len(*input.Password) < minPasswordLength {
		errs["password"] = fmt.Sprintf("Must be at least %d characters.", minPasswordLength)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
