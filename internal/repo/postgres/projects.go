package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/careercounsel/internal/domain/project"
)

type ProjectsRepo struct {
	db DB
}

func NewProjectsRepo(db DB) *ProjectsRepo {
	return &ProjectsRepo{db: db}
}

func (r *ProjectsRepo) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	p := project.Project{
		Title:            req.Title,
		ProblemStatement: req.ProblemStatement,
		SolutionOverview: req.SolutionOverview,
		Image:            req.Image,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO projects (title, problem_statement, solution_overview, image)
		 VALUES ($1,$2,$3,$4)
		 RETURNING id`,
		p.Title, p.ProblemStatement, p.SolutionOverview, p.Image,
	).Scan(&p.ID)
	if err != nil {
		return project.Project{}, fmt.Errorf("insert project: %w", err)
	}

	return p, nil
}

func (r *ProjectsRepo) List(ctx context.Context) ([]project.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, problem_statement, solution_overview, image
		 FROM projects
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]project.Project, 0)
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.ProblemStatement, &p.SolutionOverview, &p.Image); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type EnrollmentsRepo struct {
	db DB
}

func NewEnrollmentsRepo(db DB) *EnrollmentsRepo {
	return &EnrollmentsRepo{db: db}
}

func (r *EnrollmentsRepo) ProjectIDs(ctx context.Context, username string) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT project_id FROM enrollments WHERE username = $1 ORDER BY project_id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list enrollments: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
