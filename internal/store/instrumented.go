package store

import (
	"context"

	"github.com/geocoder89/careercounsel/internal/domain/project"
	"github.com/geocoder89/careercounsel/internal/domain/user"
)

// Observer times a logical store operation. observability.Prom implements it.
type Observer interface {
	ObserveStore(op string, fn func() error) error
}

// Instrument wraps every backend in s so each call is observed.
func Instrument(s Store, obs Observer) Store {
	if obs == nil {
		return s
	}

	out := s
	if s.Users != nil {
		out.Users = &observedUsers{next: s.Users, obs: obs}
	}
	if s.Projects != nil {
		out.Projects = &observedProjects{next: s.Projects, obs: obs}
	}
	if s.Enrollments != nil {
		out.Enrollments = &observedEnrollments{next: s.Enrollments, obs: obs}
	}
	return out
}

type observedUsers struct {
	next Users
	obs  Observer
}

func (o *observedUsers) PutIfAbsent(ctx context.Context, u user.User) error {
	return o.obs.ObserveStore("users.put_if_absent", func() error {
		return o.next.PutIfAbsent(ctx, u)
	})
}

func (o *observedUsers) Get(ctx context.Context, username string) (u user.User, err error) {
	err = o.obs.ObserveStore("users.get", func() error {
		u, err = o.next.Get(ctx, username)
		return err
	})
	return u, err
}

func (o *observedUsers) UpdateProfile(ctx context.Context, username string, fields user.ProfileFields) error {
	return o.obs.ObserveStore("users.update_profile", func() error {
		return o.next.UpdateProfile(ctx, username, fields)
	})
}

func (o *observedUsers) SetRoadmap(ctx context.Context, username, text string) error {
	return o.obs.ObserveStore("users.set_roadmap", func() error {
		return o.next.SetRoadmap(ctx, username, text)
	})
}

func (o *observedUsers) Scan(ctx context.Context) (users []user.User, err error) {
	err = o.obs.ObserveStore("users.scan", func() error {
		users, err = o.next.Scan(ctx)
		return err
	})
	return users, err
}

type observedProjects struct {
	next Projects
	obs  Observer
}

func (o *observedProjects) Create(ctx context.Context, req project.CreateProjectRequest) (p project.Project, err error) {
	err = o.obs.ObserveStore("projects.create", func() error {
		p, err = o.next.Create(ctx, req)
		return err
	})
	return p, err
}

func (o *observedProjects) List(ctx context.Context) (ps []project.Project, err error) {
	err = o.obs.ObserveStore("projects.list", func() error {
		ps, err = o.next.List(ctx)
		return err
	})
	return ps, err
}

type observedEnrollments struct {
	next Enrollments
	obs  Observer
}

func (o *observedEnrollments) ProjectIDs(ctx context.Context, username string) (ids []int, err error) {
	err = o.obs.ObserveStore("enrollments.project_ids", func() error {
		ids, err = o.next.ProjectIDs(ctx, username)
		return err
	})
	return ids, err
}
