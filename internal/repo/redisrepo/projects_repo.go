package redisrepo

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/geocoder89/careercounsel/internal/domain/project"
	"github.com/redis/go-redis/v9"
)

const (
	projectSeqKey     = "projects:seq"
	projectsIndexKey  = "projects:index"
	projectKeyPrefix  = "project:"
	enrollmentsPrefix = "enrollments:"
)

type ProjectsRepo struct {
	rdb *redis.Client
}

func NewProjectsRepo(rdb *redis.Client) *ProjectsRepo {
	return &ProjectsRepo{rdb: rdb}
}

func projectKey(id int64) string {
	return projectKeyPrefix + strconv.FormatInt(id, 10)
}

// Create takes the next id from INCR so ids stay sequential across processes.
func (r *ProjectsRepo) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	id, err := r.rdb.Incr(ctx, projectSeqKey).Result()
	if err != nil {
		return project.Project{}, fmt.Errorf("redis project id: %w", err)
	}

	fields := []any{
		"id", id,
		"title", req.Title,
		"problem_statement", req.ProblemStatement,
		"solution_overview", req.SolutionOverview,
	}
	if req.Image != nil {
		fields = append(fields, "image", *req.Image)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, projectKey(id), fields...)
		pipe.RPush(ctx, projectsIndexKey, id)
		return nil
	})
	if err != nil {
		return project.Project{}, fmt.Errorf("redis create project: %w", err)
	}

	return project.Project{
		ID:               int(id),
		Title:            req.Title,
		ProblemStatement: req.ProblemStatement,
		SolutionOverview: req.SolutionOverview,
		Image:            req.Image,
	}, nil
}

func (r *ProjectsRepo) List(ctx context.Context) ([]project.Project, error) {
	ids, err := r.rdb.LRange(ctx, projectsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list projects: %w", err)
	}

	out := make([]project.Project, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, projectKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis list projects: %w", err)
	}

	for _, cmd := range cmds {
		m := cmd.Val()
		if len(m) == 0 {
			continue
		}
		id, _ := strconv.Atoi(m["id"])
		p := project.Project{
			ID:               id,
			Title:            m["title"],
			ProblemStatement: m["problem_statement"],
			SolutionOverview: m["solution_overview"],
		}
		if img, ok := m["image"]; ok {
			p.Image = &img
		}
		out = append(out, p)
	}
	return out, nil
}

type EnrollmentsRepo struct {
	rdb *redis.Client
}

func NewEnrollmentsRepo(rdb *redis.Client) *EnrollmentsRepo {
	return &EnrollmentsRepo{rdb: rdb}
}

func (r *EnrollmentsRepo) ProjectIDs(ctx context.Context, username string) ([]int, error) {
	members, err := r.rdb.SMembers(ctx, enrollmentsPrefix+username).Result()
	if err != nil {
		return nil, fmt.Errorf("redis enrollments: %w", err)
	}

	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
