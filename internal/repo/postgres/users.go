package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repos use; pgxmock satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UsersRepo struct {
	db DB
}

func NewUsersRepo(db DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `username, password, role, is_admin, college, education, cgpa, skills, target_goal, roadmap_text`

func (r *UsersRepo) PutIfAbsent(ctx context.Context, u user.User) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (username) DO NOTHING`,
		u.Username, u.Password, string(u.Role), u.IsAdmin,
		u.College, u.Education, u.CGPA, u.Skills, u.TargetGoal, u.RoadmapText,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *UsersRepo) Get(ctx context.Context, username string) (user.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE username = $1`,
		username,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, store.ErrNotFound
		}
		return user.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, username string, f user.ProfileFields) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET college = $2, education = $3, cgpa = $4, skills = $5, target_goal = $6, updated_at = now()
		 WHERE username = $1`,
		username, f.College, f.Education, f.CGPA, f.Skills, f.TargetGoal,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) SetRoadmap(ctx context.Context, username, text string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET roadmap_text = $2, updated_at = now() WHERE username = $1`,
		username, text,
	)
	if err != nil {
		return fmt.Errorf("update roadmap: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Scan(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan users: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return out, nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)

	err := row.Scan(
		&u.Username,
		&u.Password,
		&role,
		&u.IsAdmin,
		&u.College,
		&u.Education,
		&u.CGPA,
		&u.Skills,
		&u.TargetGoal,
		&u.RoadmapText,
	)
	u.Role = user.Role(role)
	return u, err
}
