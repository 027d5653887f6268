package dynamo

import (
	"github.com/geocoder89/careercounsel/internal/repo/memory"
	"github.com/geocoder89/careercounsel/internal/store"
)

// NewStore backs users with DynamoDB. The managed-table deployment never had
// projects or enrollments tables, so those stay in process memory.
func NewStore(api API, table string) store.Store {
	users := NewUsersRepo(api, table)
	return store.Store{
		Users:       users,
		Projects:    memory.NewProjectsRepo(),
		Enrollments: memory.NewEnrollmentsRepo(),
		Ping:        users.Ping,
		Close:       func() error { return nil },
	}
}
