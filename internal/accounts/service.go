// Package accounts is the credential store: signup, credential checks and
// the admin listing, on top of the users table.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/security"
	"github.com/geocoder89/careercounsel/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRoleMismatch       = errors.New("account role does not match")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAlreadyExists      = store.ErrAlreadyExists
)

type Service struct {
	users  store.Users
	hasher security.PasswordHasher
}

func NewService(users store.Users, hasher security.PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Create registers a new account with an empty profile. The write is
// conditional on the username being free.
func (s *Service) Create(ctx context.Context, username, password string, role user.Role) (user.Account, error) {
	if role == "" {
		role = user.RoleStudent
	}
	if !role.IsValid() {
		return user.Account{}, ErrInvalidRole
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return user.Account{}, fmt.Errorf("hash password: %w", err)
	}

	acc := user.Account{
		Username: username,
		Password: stored,
		Role:     role,
		IsAdmin:  role == user.RoleAdmin,
	}

	if err := s.users.PutIfAbsent(ctx, user.User{Account: acc}); err != nil {
		return user.Account{}, err
	}
	return acc, nil
}

// Verify returns the account when username and password match. Unknown
// users and wrong passwords are indistinguishable to the caller.
func (s *Service) Verify(ctx context.Context, username, password string) (user.Account, error) {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.Account{}, ErrInvalidCredentials
		}
		return user.Account{}, err
	}

	if err := s.hasher.Verify(u.Password, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return user.Account{}, ErrInvalidCredentials
		}
		return user.Account{}, fmt.Errorf("verify password: %w", err)
	}

	return u.Account, nil
}

// Login verifies credentials and then checks the stored role against the
// role the user asked to sign in as.
func (s *Service) Login(ctx context.Context, username, password string, role user.Role) (user.Account, error) {
	acc, err := s.Verify(ctx, username, password)
	if err != nil {
		return user.Account{}, err
	}
	if role == "" {
		role = user.RoleStudent
	}
	if acc.Role != role {
		return user.Account{}, ErrRoleMismatch
	}
	return acc, nil
}

// List returns every registered user, sorted by username.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.users.Scan(ctx)
}

// EnsureAdmin seeds an admin account. An existing account with the same
// username is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	_, err := s.Create(ctx, username, password, user.RoleAdmin)
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
