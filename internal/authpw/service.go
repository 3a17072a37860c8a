// Package authpw provides email/password registration and login.
package authpw

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/store"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// ValidationError marks a bad registration request; the HTTP layer maps it
// to 422.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// UserStore defines the storage interface for auth
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, id string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

type RegisterRequest struct {
	FullName string
	Email    string
	Password string
}

// Register creates a user account. Emails are stored lowercased so login is
// case-insensitive.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (store.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.FullName == "" {
		return store.User{}, ValidationError{Message: "full name is required"}
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return store.User{}, ValidationError{Message: "a valid email is required"}
	}
	if len(req.Password) < 6 {
		return store.User{}, ValidationError{Message: "password must be at least 6 characters"}
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return store.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := store.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return store.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies an email/password pair. Lookup and compare failures
// collapse into the same error so callers cannot probe for accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return store.User{}, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return store.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return store.User{}, ErrInvalidCredentials
	}
	return user, nil
}
