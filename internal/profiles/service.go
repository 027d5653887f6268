package profiles

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/store"
)

type Service struct {
	users store.Users
	log   *slog.Logger
}

func NewService(users store.Users, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, log: log}
}

// Get never fails: a missing user or a storage error yields an empty
// profile carrying only the username.
func (s *Service) Get(ctx context.Context, username string) user.Profile {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.ErrorContext(ctx, "profile lookup failed", "username", username, "err", err)
		}
		return user.Profile{Username: username}
	}
	return u.Profile()
}

// Update overwrites all five goal fields.
func (s *Service) Update(ctx context.Context, username string, fields user.ProfileFields) error {
	return s.users.UpdateProfile(ctx, username, fields)
}

func (s *Service) SetRoadmap(ctx context.Context, username, text string) error {
	return s.users.SetRoadmap(ctx, username, text)
}
