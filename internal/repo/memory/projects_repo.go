package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/careercounsel/internal/domain/project"
)

type ProjectsRepo struct {
	mu    sync.RWMutex
	items []project.Project
}

func NewProjectsRepo() *ProjectsRepo {
	return &ProjectsRepo{}
}

// Create assigns the next sequential id, starting at 1.
func (r *ProjectsRepo) Create(_ context.Context, req project.CreateProjectRequest) (project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := project.Project{
		ID:               len(r.items) + 1,
		Title:            req.Title,
		ProblemStatement: req.ProblemStatement,
		SolutionOverview: req.SolutionOverview,
		Image:            req.Image,
	}
	r.items = append(r.items, p)

	return p, nil
}

func (r *ProjectsRepo) List(_ context.Context) ([]project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]project.Project, len(r.items))
	copy(out, r.items)
	return out, nil
}

// EnrollmentsRepo maps username to enrolled project ids.
type EnrollmentsRepo struct {
	mu    sync.RWMutex
	items map[string][]int
}

func NewEnrollmentsRepo() *EnrollmentsRepo {
	return &EnrollmentsRepo{items: make(map[string][]int)}
}

func (r *EnrollmentsRepo) ProjectIDs(_ context.Context, username string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.items[username]
	out := make([]int, len(ids))
	copy(out, ids)
	return out, nil
}
