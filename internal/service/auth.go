package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/metrics"
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/repository"
	"github.com/quillpost/quillpost/internal/validate"
)

// UserStore is the persistence surface AuthService depends on.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService handles registration and credential verification.
type AuthService struct {
	store   UserStore
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		metrics: recorder,
	}
}

// RegisterInput defines the fields of the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the fields of the login form.
type LoginInput struct {
	Email    string
	Password string
}

// Register validates input, hashes the password, and creates the account.
// A taken email surfaces as a field error so the form can render it inline.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if errs := validate.Register(validate.RegisterInput(input)); errs.HasErrors() {
		s.metrics.IncValidationFailed()
		return nil, NewValidationError(errs)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncValidationFailed()
			return nil, NewValidationError(validate.Errors{
				"email": "The email has already been taken.",
			})
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	return user, nil
}

// Login verifies credentials and returns the matching user.
// Unknown email and wrong password both return ErrInvalidCredentials so
// the response never reveals which part was wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*model.User, error) {
	if errs := validate.Login(validate.LoginInput(input)); errs.HasErrors() {
		s.metrics.IncValidationFailed()
		return nil, NewValidationError(errs)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailed()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLoginSucceeded()
	return user, nil
}
