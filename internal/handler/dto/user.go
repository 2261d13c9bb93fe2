package dto

import (
	"time"

	"github.com/biblio/biblio/internal/model"
)

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenRequest represents the credential exchange request body.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenRefreshRequest represents the refresh exchange request body.
type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UpdateUserRequest represents the admin user-edit request body.
type UpdateUserRequest struct {
	Name     *string  `json:"name,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Password *string  `json:"password,omitempty"`
}

// UserResponse represents a user in API responses. The password hash
// never leaves the model layer.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserListResponse converts a slice of User models.
func ToUserListResponse(users []*model.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = *ToUserResponse(user)
	}
	return responses
}
