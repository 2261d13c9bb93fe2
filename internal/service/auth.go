package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/cache"
	"github.com/biblio/biblio/internal/model"
	"github.com/biblio/biblio/internal/repository"
)

// Auth service errors.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

const (
	maxNameLength     = 100
	maxEmailLength    = 254
	minPasswordLength = 6
	refreshTokenBytes = 32
)

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration and token issuance.
type AuthService struct {
	repo       *repository.Repository
	cache      *cache.Cache
	issuer     *auth.TokenIssuer
	refreshTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.Repository, cache *cache.Cache, issuer *auth.TokenIssuer, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		repo:       repo,
		cache:      cache,
		issuer:     issuer,
		refreshTTL: refreshTTL,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new user with a hashed password and the member role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           newID(),
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Roles:        []string{model.RoleMember},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Same error for unknown email and bad password to
			// prevent account enumeration.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair.
// Refresh tokens are single use and rotated on every exchange.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}

	userID, err := s.cache.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if userID == "" {
		return nil, ErrInvalidRefresh
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// User was deleted after the token was issued.
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// issueTokens mints an access token and stores a fresh refresh token.
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.cache.StoreRefreshToken(ctx, refresh, user.ID, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// generateRefreshToken returns an opaque URL-safe random token.
func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// validateRegisterInput checks required fields and formats.
func validateRegisterInput(input RegisterInput) error {
	errs := ValidationError{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs["name"] = "This field is required."
	} else if len(name) > maxNameLength {
		errs["name"] = fmt.Sprintf("Must be at most %d characters.", maxNameLength)
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		errs["email"] = "This field is required."
	} else if len(email) > maxEmailLength {
		errs["email"] = "Email address is too long."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if input.Password == "" {
		errs["password"] = "This field is required."
	} else if len(input.Password) < minPasswordLength {
		errs["password"] = fmt.Sprintf("Must be at least %d characters.", minPasswordLength)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// normalizeEmail lowercases and trims an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
