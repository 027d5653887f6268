// Package store declares the storage contract shared by every backend
// (memory, redis, postgres, dynamodb).
package store

import (
	"context"
	"errors"

	"github.com/geocoder89/careercounsel/internal/domain/project"
	"github.com/geocoder89/careercounsel/internal/domain/user"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Users is the key-value users table. Account and profile live on the same
// record keyed by username.
type Users interface {
	// PutIfAbsent is the conditional write that keeps usernames unique.
	PutIfAbsent(ctx context.Context, u user.User) error
	Get(ctx context.Context, username string) (user.User, error)
	UpdateProfile(ctx context.Context, username string, fields user.ProfileFields) error
	SetRoadmap(ctx context.Context, username, text string) error
	Scan(ctx context.Context) ([]user.User, error)
}

type Projects interface {
	Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
}

// Enrollments is read-only: nothing in the application enrolls users.
type Enrollments interface {
	ProjectIDs(ctx context.Context, username string) ([]int, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles the backends the router needs.
type Store struct {
	Users       Users
	Projects    Projects
	Enrollments Enrollments
	Ping        func(ctx context.Context) error
	Close       func() error
}
