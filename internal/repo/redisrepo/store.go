package redisrepo

import (
	"github.com/geocoder89/careercounsel/internal/redisclient"
	"github.com/geocoder89/careercounsel/internal/store"
)

func NewStore(c *redisclient.Client) store.Store {
	rdb := c.Raw()
	return store.Store{
		Users:       NewUsersRepo(rdb),
		Projects:    NewProjectsRepo(rdb),
		Enrollments: NewEnrollmentsRepo(rdb),
		Ping:        c.Ping,
		Close:       c.Close,
	}
}
