package postgres

import (
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewStore(pool *pgxpool.Pool) store.Store {
	return store.Store{
		Users:       NewUsersRepo(pool),
		Projects:    NewProjectsRepo(pool),
		Enrollments: NewEnrollmentsRepo(pool),
		Ping:        pool.Ping,
		Close: func() error {
			pool.Close()
			return nil
		},
	}
}
