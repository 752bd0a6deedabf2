package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ndanilov/itemvault/internal/repo"
)

func TestRegister(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "a@x.com", user.Email)
	require.NotEqual(t, "secret123", user.PasswordHash)
	require.True(t, user.IsActive)
	require.False(t, user.IsSuperuser)
	require.False(t, user.CreatedAt.IsZero())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@x.com", "secret456")
	require.ErrorIs(t, err, repo.ErrUserExists)

	_, err = svc.Register(ctx, "bob", "b@x.com", "secret123")
	require.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, created.ID, user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "wrong")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestAuthenticateUnknownUsername(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}

	user, err := svc.Authenticate(context.Background(), "nobody", "secret123")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestElevate(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	require.False(t, created.IsSuperuser)

	user, err := svc.Elevate(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, user.IsSuperuser)

	// already-superuser elevation is a no-op, not an error
	user, err = svc.Elevate(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, user.IsSuperuser)

	stored, err := svc.Repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, stored.IsSuperuser)
}

func TestElevateUnknownUser(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}

	_, err := svc.Elevate(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListAll(t *testing.T) {
	svc := &UserService{Repo: newTestRepo(t)}
	ctx := context.Background()

	users, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	_, err = svc.Register(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "b@x.com", "secret123")
	require.NoError(t, err)

	users, err = svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
