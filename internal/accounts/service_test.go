package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/repo/memory"
	"github.com/geocoder89/careercounsel/internal/security"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T, hasher security.PasswordHasher) (*Service, *memory.UsersRepo) {
	t.Helper()
	users := memory.NewUsersRepo()
	return NewService(users, hasher), users
}

func TestCreateThenVerify(t *testing.T) {
	cases := []struct {
		name   string
		hasher security.PasswordHasher
	}{
		{"bcrypt", security.BcryptHasher{Cost: bcrypt.MinCost}},
		{"plaintext", security.PlaintextHasher{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newService(t, tc.hasher)

			acc, err := svc.Create(ctx, "alice", "pw1", user.RoleStudent)
			require.NoError(t, err)
			assert.False(t, acc.IsAdmin)

			got, err := svc.Verify(ctx, "alice", "pw1")
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Username)
			assert.Equal(t, user.RoleStudent, got.Role)
		})
	}
}

func TestCreate_StoresHashNotPlaintext(t *testing.T) {
	ctx := context.Background()
	svc, users := newService(t, security.BcryptHasher{Cost: bcrypt.MinCost})

	_, err := svc.Create(ctx, "alice", "pw1", user.RoleStudent)
	require.NoError(t, err)

	u, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", u.Password)
	assert.Empty(t, u.TargetGoal)
	assert.Nil(t, u.RoadmapText)
}

func TestCreate_DuplicateFailsRegardlessOfPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, security.PlaintextHasher{})

	_, err := svc.Create(ctx, "alice", "pw1", user.RoleStudent)
	require.NoError(t, err)

	for _, pw := range []string{"pw1", "other", ""} {
		_, err := svc.Create(ctx, "alice", pw, user.RoleAdmin)
		assert.ErrorIs(t, err, store.ErrAlreadyExists, "password %q", pw)
	}
}

func TestCreate_RoleDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, security.PlaintextHasher{})

	acc, err := svc.Create(ctx, "bob", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, acc.Role)

	admin, err := svc.Create(ctx, "root", "pw", user.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	_, err = svc.Create(ctx, "eve", "pw", user.Role("mentor"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestVerify_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, security.BcryptHasher{Cost: bcrypt.MinCost})

	_, err := svc.Create(ctx, "alice", "pw1", user.RoleStudent)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Verify(ctx, "nobody", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_RoleMismatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, security.PlaintextHasher{})

	_, err := svc.Create(ctx, "alice", "pw1", user.RoleStudent)
	require.NoError(t, err)

	acc, err := svc.Login(ctx, "alice", "pw1", user.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Username)

	_, err = svc.Login(ctx, "alice", "pw1", user.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleMismatch)

	_, err = svc.Login(ctx, "alice", "pw1", "")
	assert.NoError(t, err)
}

type failingUsers struct {
	store.Users
	err error
}

func (f failingUsers) Get(context.Context, string) (user.User, error) {
	return user.User{}, f.err
}

func TestVerify_StorageErrorIsNotCredentialError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(failingUsers{err: boom}, security.PlaintextHasher{})

	_, err := svc.Verify(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, security.PlaintextHasher{})

	created, err := svc.EnsureAdmin(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	acc, err := svc.Login(ctx, "admin", "secret", user.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, acc.IsAdmin)

	created, err = svc.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, security.PlaintextHasher{})

	for _, name := range []string{"carl", "anna"} {
		_, err := svc.Create(ctx, name, "pw", user.RoleStudent)
		require.NoError(t, err)
	}

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "anna", users[0].Username)
}
