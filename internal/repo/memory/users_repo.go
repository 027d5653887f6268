package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/store"
)

// UsersRepo keeps users in process memory. Nothing survives a restart and
// separate processes do not share state.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) PutIfAbsent(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[u.Username]; ok {
		return store.ErrAlreadyExists
	}

	r.items[u.Username] = u
	return nil
}

func (r *UsersRepo) Get(_ context.Context, username string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[username]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) UpdateProfile(_ context.Context, username string, fields user.ProfileFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[username]
	if !ok {
		return store.ErrNotFound
	}

	u.ApplyProfile(fields)
	r.items[username] = u
	return nil
}

func (r *UsersRepo) SetRoadmap(_ context.Context, username, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[username]
	if !ok {
		return store.ErrNotFound
	}

	u.RoadmapText = &text
	r.items[username] = u
	return nil
}

// Scan returns users ordered by username.
func (r *UsersRepo) Scan(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
