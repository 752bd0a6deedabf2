package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ndanilov/itemvault/internal/models"
	"github.com/ndanilov/itemvault/internal/transport"
)

type itemTestEnv struct {
	Items *ItemService
	Users *UserService
	Owner *models.User
	Other *models.User
	Super *models.User
}

func newItemTestEnv(t *testing.T) *itemTestEnv {
	t.Helper()

	r := newTestRepo(t)
	users := &UserService{Repo: r}
	ctx := context.Background()

	owner, err := users.Register(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	other, err := users.Register(ctx, "bob", "b@x.com", "secret123")
	require.NoError(t, err)
	super, err := users.Register(ctx, "root", "root@x.com", "secret123")
	require.NoError(t, err)
	super, err = users.Elevate(ctx, super.ID)
	require.NoError(t, err)

	return &itemTestEnv{
		Items: &ItemService{Repo: r},
		Users: users,
		Owner: owner,
		Other: other,
		Super: super,
	}
}

func (env *itemTestEnv) createItem(t *testing.T, name string) *models.Item {
	t.Helper()
	item, err := env.Items.Create(context.Background(), transport.CreateItemRequest{
		Name:  name,
		Price: 1.5,
	}, env.Owner.ID)
	require.NoError(t, err)
	return item
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestCreateAndGetItem(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()

	item, err := env.Items.Create(ctx, transport.CreateItemRequest{
		Name:        "pen",
		Description: "blue ink",
		Price:       1.5,
		Tags:        []string{"office"},
	}, env.Owner.ID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, item.ID)
	require.Equal(t, env.Owner.ID, item.OwnerID)
	require.False(t, item.CreatedAt.IsZero())
	require.Nil(t, item.UpdatedAt)
	require.False(t, item.Deleted)

	got, err := env.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "pen", got.Name)
	require.Equal(t, models.Tags{"office"}, got.Tags)
}

func TestGetUnknownItem(t *testing.T) {
	env := newItemTestEnv(t)

	got, err := env.Items.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCreateItemDefaultTags(t *testing.T) {
	env := newItemTestEnv(t)

	item := env.createItem(t, "pen")
	require.NotNil(t, item.Tags)
	require.Empty(t, item.Tags)
}

func TestUpdateItemPartial(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	updated, err := env.Items.Update(ctx, item.ID, transport.UpdateItemRequest{
		Price: floatPtr(2.5),
	}, env.Owner)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "pen", updated.Name, "absent fields stay untouched")
	require.Equal(t, 2.5, updated.Price)
	require.NotNil(t, updated.UpdatedAt)
}

func TestUpdateItemZeroValueIsApplied(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()

	item, err := env.Items.Create(ctx, transport.CreateItemRequest{
		Name:        "pen",
		Description: "blue ink",
		Price:       1.5,
	}, env.Owner.ID)
	require.NoError(t, err)

	// supplying "" is different from not supplying the field
	updated, err := env.Items.Update(ctx, item.ID, transport.UpdateItemRequest{
		Description: strPtr(""),
	}, env.Owner)
	require.NoError(t, err)
	require.Equal(t, "", updated.Description)
	require.Equal(t, "pen", updated.Name)
}

func TestUpdateItemEmptyPatch(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	updated, err := env.Items.Update(ctx, item.ID, transport.UpdateItemRequest{}, env.Owner)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Nil(t, updated.UpdatedAt, "no-op patch must not bump updated_at")
}

func TestUpdateUnknownItem(t *testing.T) {
	env := newItemTestEnv(t)

	updated, err := env.Items.Update(context.Background(), uuid.New(), transport.UpdateItemRequest{
		Name: strPtr("x"),
	}, env.Owner)
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestUpdateDeletedItemRejected(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	ok, err := env.Items.SoftDelete(ctx, item.ID, env.Owner)
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := env.Items.Update(ctx, item.ID, transport.UpdateItemRequest{
		Name: strPtr("pencil"),
	}, env.Owner)
	require.NoError(t, err)
	require.Nil(t, updated)

	stored, err := env.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, "pen", stored.Name, "rejected update must leave the record unchanged")
	require.Nil(t, stored.UpdatedAt)
}

func TestUpdateItemOwnership(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	_, err := env.Items.Update(ctx, item.ID, transport.UpdateItemRequest{
		Name: strPtr("stolen"),
	}, env.Other)
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := env.Items.Update(ctx, item.ID, transport.UpdateItemRequest{
		Name: strPtr("confiscated"),
	}, env.Super)
	require.NoError(t, err)
	require.Equal(t, "confiscated", updated.Name)
}

func TestSoftDeleteIdempotentTowardFalse(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	ok, err := env.Items.SoftDelete(ctx, item.ID, env.Owner)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := env.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, stored.Deleted, "soft-deleted items stay retrievable by id")

	ok, err = env.Items.SoftDelete(ctx, item.ID, env.Owner)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSoftDeleteUnknownItem(t *testing.T) {
	env := newItemTestEnv(t)

	ok, err := env.Items.SoftDelete(context.Background(), uuid.New(), env.Owner)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSoftDeleteOwnership(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	_, err := env.Items.SoftDelete(ctx, item.ID, env.Other)
	require.ErrorIs(t, err, ErrForbidden)

	ok, err := env.Items.SoftDelete(ctx, item.ID, env.Super)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHardDeleteActiveItem(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	ok, err := env.Items.HardDelete(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := env.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestHardDeleteSoftDeletedItem(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "pen")

	ok, err := env.Items.SoftDelete(ctx, item.ID, env.Owner)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = env.Items.HardDelete(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := env.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestHardDeleteUnknownItem(t *testing.T) {
	env := newItemTestEnv(t)

	ok, err := env.Items.HardDelete(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListExcludesDeletedByDefault(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()

	kept := env.createItem(t, "kept")
	gone := env.createItem(t, "gone")

	ok, err := env.Items.SoftDelete(ctx, gone.ID, env.Owner)
	require.NoError(t, err)
	require.True(t, ok)

	items, err := env.Items.List(ctx, false, 0, 50)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, kept.ID, items[0].ID)

	items, err = env.Items.List(ctx, true, 0, 50)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestListPagination(t *testing.T) {
	env := newItemTestEnv(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	first := &models.Item{Name: "first", OwnerID: env.Owner.ID, CreatedAt: base}
	second := &models.Item{Name: "second", OwnerID: env.Owner.ID, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, env.Items.Repo.CreateItem(ctx, first))
	require.NoError(t, env.Items.Repo.CreateItem(ctx, second))

	items, err := env.Items.List(ctx, false, 0, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "first", items[0].Name, "limit=1 returns the earliest-inserted item")

	items, err = env.Items.List(ctx, false, 1, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "second", items[0].Name)

	items, err = env.Items.List(ctx, false, 2, 1)
	require.NoError(t, err)
	require.Empty(t, items)
}
