package memory

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dms/internal/model"
	"dms/internal/repository"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := store.Users()

	alice, err := users.Create(ctx, &model.User{Username: "alice", Email: "a@x.com", Role: model.RoleRegular, CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	bob, err := users.Create(ctx, &model.User{Username: "bob", Email: "b@x.com", Role: model.RoleRegular})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.Create(ctx, &model.User{Username: "alice2", Email: "a@x.com"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("find by username or email", func(t *testing.T) {
		got, err := users.FindByIdentifier(ctx, "alice", "")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		got, err = users.FindByIdentifier(ctx, "", "B@X.COM")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)

		_, err = users.FindByIdentifier(ctx, "", "")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("update keeps uniqueness", func(t *testing.T) {
		upd := *bob
		upd.Email = "a@x.com"
		_, err := users.Update(ctx, &upd)
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		upd.Email = "bob@x.com"
		got, err := users.Update(ctx, &upd)
		require.NoError(t, err)
		assert.Equal(t, "bob@x.com", got.Email)

		_, err = users.Update(ctx, &model.User{ID: 42})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("list paginates", func(t *testing.T) {
		res, err := users.List(ctx, repository.PageQuery{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, bob.ID, res.Items[0].ID)

		res, err = users.List(ctx, repository.PageQuery{Limit: 10, Offset: 5})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
	})
}

func TestDocumentRepository_CascadeAndFilter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	owner, err := store.Users().Create(ctx, &model.User{Username: "o", Email: "o@x.com"})
	require.NoError(t, err)

	docs := store.Documents()
	base := time.Now()
	pub, err := docs.Create(ctx, &model.Document{Title: "p", Owner: owner.ID, Access: model.AccessPublic, StoragePath: "k1", CreatedAt: base})
	require.NoError(t, err)
	priv, err := docs.Create(ctx, &model.Document{Title: "q", Owner: owner.ID, Access: model.AccessPrivate, StoragePath: "k2", CreatedAt: base.Add(time.Second)})
	require.NoError(t, err)

	_, err = docs.Create(ctx, &model.Document{Title: "orphan", Owner: 99, StoragePath: "k3"})
	assert.Error(t, err)

	all, err := docs.FindByOwner(ctx, repository.DocumentFilter{Owner: owner.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, priv.ID, all[0].ID)

	public := model.AccessPublic
	onlyPublic, err := docs.FindByOwner(ctx, repository.DocumentFilter{Owner: owner.ID, Access: &public})
	require.NoError(t, err)
	require.Len(t, onlyPublic, 1)
	assert.Equal(t, pub.ID, onlyPublic[0].ID)

	require.NoError(t, store.Users().Delete(ctx, owner.ID))
	_, err = docs.FindByID(ctx, pub.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, store.Users().Delete(ctx, owner.ID), sql.ErrNoRows)
}
