package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"recuring/internal/model"
	"recuring/internal/repository"
)

// UserAccounts is the user persistence the auth flows need.
type UserAccounts interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// AuthService registers users and manages their sessions.
type AuthService struct {
	users    UserAccounts
	sessions SessionStore
	cost     int
}

func NewAuthService(users UserAccounts, sessions SessionStore) *AuthService {
	return &AuthService{users: users, sessions: sessions, cost: bcrypt.DefaultCost}
}

// Register creates an account. Email may be empty.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, model.NewValidationError("username", "is required")
	}
	if password == "" {
		return nil, model.NewValidationError("password", "is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, model.NewValidationError("password", "must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Username: username, PasswordHash: string(hash)}
	if email != "" {
		user.Email = &email
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, *model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return Session{}, nil, ErrInvalidCredentials
	case err != nil:
		return Session{}, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(user.ID)
	if err != nil {
		return Session{}, nil, fmt.Errorf("create session: %w", err)
	}
	return sess, user, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(token string) error {
	if token == "" || !s.sessions.Revoke(token) {
		return ErrUnauthenticated
	}
	return nil
}

// Authenticate resolves a token to the id of the user who owns it.
func (s *AuthService) Authenticate(token string) (uint, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}
	sess, ok := s.sessions.Lookup(token)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return sess.UserID, nil
}

// CurrentUser loads the account behind an authenticated id. A session whose
// user no longer exists counts as unauthenticated.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	return user, err
}
