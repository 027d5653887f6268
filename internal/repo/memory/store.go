package memory

import (
	"context"

	"github.com/geocoder89/careercounsel/internal/store"
)

func NewStore() store.Store {
	return store.Store{
		Users:       NewUsersRepo(),
		Projects:    NewProjectsRepo(),
		Enrollments: NewEnrollmentsRepo(),
		Ping:        func(context.Context) error { return nil },
		Close:       func() error { return nil },
	}
}
