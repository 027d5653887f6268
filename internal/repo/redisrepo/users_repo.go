package redisrepo

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "user:"
	usersIndexKey = "users:index"
)

// putIfAbsentScript writes the whole hash only when the key is new.
// KEYS[1]=user key, KEYS[2]=index set, ARGV[1]=username, ARGV[2..]=field/value pairs.
var putIfAbsentScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 1 then
		return 0
	end
	redis.call("HSET", KEYS[1], unpack(ARGV, 2))
	redis.call("SADD", KEYS[2], ARGV[1])
	return 1
`)

// updateIfExistsScript overwrites the given fields only on an existing hash.
var updateIfExistsScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return 0
	end
	redis.call("HSET", KEYS[1], unpack(ARGV))
	return 1
`)

type UsersRepo struct {
	rdb *redis.Client
}

func NewUsersRepo(rdb *redis.Client) *UsersRepo {
	return &UsersRepo{rdb: rdb}
}

func userKey(username string) string {
	return userKeyPrefix + username
}

func (r *UsersRepo) PutIfAbsent(ctx context.Context, u user.User) error {
	args := append([]any{u.Username}, encodeUser(u)...)

	n, err := putIfAbsentScript.Run(ctx, r.rdb, []string{userKey(u.Username), usersIndexKey}, args...).Int()
	if err != nil {
		return fmt.Errorf("redis put user: %w", err)
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *UsersRepo) Get(ctx context.Context, username string) (user.User, error) {
	fields, err := r.rdb.HGetAll(ctx, userKey(username)).Result()
	if err != nil {
		return user.User{}, fmt.Errorf("redis get user: %w", err)
	}
	if len(fields) == 0 {
		return user.User{}, store.ErrNotFound
	}
	return decodeUser(fields), nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, username string, f user.ProfileFields) error {
	return r.updateIfExists(ctx, username,
		"college", f.College,
		"education", f.Education,
		"cgpa", f.CGPA,
		"skills", f.Skills,
		"target_goal", f.TargetGoal,
	)
}

func (r *UsersRepo) SetRoadmap(ctx context.Context, username, text string) error {
	return r.updateIfExists(ctx, username, "roadmap_text", text)
}

func (r *UsersRepo) updateIfExists(ctx context.Context, username string, pairs ...any) error {
	n, err := updateIfExistsScript.Run(ctx, r.rdb, []string{userKey(username)}, pairs...).Int()
	if err != nil {
		return fmt.Errorf("redis update user: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Scan(ctx context.Context) ([]user.User, error) {
	names, err := r.rdb.SMembers(ctx, usersIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis scan users: %w", err)
	}
	sort.Strings(names)

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.HGetAll(ctx, userKey(name))
	}
	if len(names) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("redis scan users: %w", err)
		}
	}

	out := make([]user.User, 0, len(names))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		out = append(out, decodeUser(fields))
	}
	return out, nil
}

func encodeUser(u user.User) []any {
	pairs := []any{
		"username", u.Username,
		"password", u.Password,
		"role", string(u.Role),
		"is_admin", strconv.FormatBool(u.IsAdmin),
		"college", u.College,
		"education", u.Education,
		"cgpa", u.CGPA,
		"skills", u.Skills,
		"target_goal", u.TargetGoal,
	}
	if u.RoadmapText != nil {
		pairs = append(pairs, "roadmap_text", *u.RoadmapText)
	}
	return pairs
}

func decodeUser(m map[string]string) user.User {
	isAdmin, _ := strconv.ParseBool(m["is_admin"])

	u := user.User{
		Account: user.Account{
			Username: m["username"],
			Password: m["password"],
			Role:     user.Role(m["role"]),
			IsAdmin:  isAdmin,
		},
		College:    m["college"],
		Education:  m["education"],
		CGPA:       m["cgpa"],
		Skills:     m["skills"],
		TargetGoal: m["target_goal"],
	}
	if text, ok := m["roadmap_text"]; ok {
		u.RoadmapText = &text
	}
	return u
}
