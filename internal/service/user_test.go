package service

import (
	"context"
	"errors"
	"testing"

	"dms/internal/model"
	"dms/internal/policy"
	"dms/internal/repository"
	"dms/internal/repository/memory"
	repoMocks "dms/internal/repository/mocks"
	"dms/internal/storage"
	storeMocks "dms/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	users UserService
	docs  DocumentService
	store *memory.Store
	blobs *storage.Memory
	alice policy.Principal
	bob   policy.Principal
	root  policy.Principal
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	blobs := storage.NewMemory()

	create := func(name string, role model.Role) policy.Principal {
		u, err := store.Users().Create(ctx, &model.User{Username: name, Email: name + "@example.com", Role: role})
		require.NoError(t, err)
		return policy.Principal{ID: u.ID, Role: u.Role}
	}

	return &userFixture{
		users: NewUserService(store.Users(), store.Documents(), blobs, bcrypt.MinCost, nil),
		docs:  NewDocumentService(blobs, store.Documents(), nil),
		store: store,
		blobs: blobs,
		alice: create("alice", model.RoleRegular),
		bob:   create("bob", model.RoleRegular),
		root:  create("root", model.RoleAdmin),
	}
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	_, err := f.users.List(ctx, f.alice, 10, 0)
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := f.users.List(ctx, f.root, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Items, 3)

	res, err = f.users.List(ctx, f.root, 2, 2)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	first, err := f.users.Get(ctx, f.alice, f.alice.ID)
	require.NoError(t, err)
	second, err := f.users.Get(ctx, f.alice, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = f.users.Get(ctx, f.bob, f.alice.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	viaAdmin, err := f.users.Get(ctx, f.root, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", viaAdmin.Username)

	_, err = f.users.Get(ctx, f.root, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial merge keeps other fields", func(t *testing.T) {
		f := newUserFixture(t)
		u, err := f.users.Update(ctx, f.alice, f.alice.ID, UserUpdate{Firstname: "Alice", Email: " NEW@Example.com "})
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, "Alice", u.Firstname)
		assert.Equal(t, "new@example.com", u.Email)
		assert.Equal(t, model.RoleRegular, u.Role)
	})

	t.Run("password is re-hashed", func(t *testing.T) {
		f := newUserFixture(t)
		u, err := f.users.Update(ctx, f.alice, f.alice.ID, UserUpdate{Password: "fresh"})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("fresh")))
	})

	t.Run("other users are rejected", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.users.Update(ctx, f.bob, f.alice.ID, UserUpdate{Firstname: "Mallory"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("role change requires admin", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.users.Update(ctx, f.alice, f.alice.ID, UserUpdate{Role: model.RoleAdmin})
		assert.ErrorIs(t, err, ErrUnauthorized)

		u, err := f.users.Update(ctx, f.root, f.alice.ID, UserUpdate{Role: model.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, u.Role)

		_, err = f.users.Update(ctx, f.root, f.alice.ID, UserUpdate{Role: model.Role(7)})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.users.Update(ctx, f.alice, f.alice.ID, UserUpdate{Username: "bob"})
		assert.ErrorIs(t, err, ErrDuplicateIdentity)
	})

	t.Run("malformed email", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.users.Update(ctx, f.alice, f.alice.ID, UserUpdate{Email: "nope"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "email", ve.Field)
	})

	t.Run("missing user", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.users.Update(ctx, f.root, 404, UserUpdate{Firstname: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	_, err := f.docs.Create(ctx, f.alice, NewDocument{Title: "one", Content: "1"})
	require.NoError(t, err)
	_, err = f.docs.Create(ctx, f.alice, NewDocument{Title: "two", Content: "2", Access: "private"})
	require.NoError(t, err)
	_, err = f.docs.Create(ctx, f.bob, NewDocument{Title: "bob's", Content: "b"})
	require.NoError(t, err)
	require.Equal(t, 3, f.blobs.Len())

	assert.ErrorIs(t, f.users.Delete(ctx, f.bob, f.alice.ID), ErrUnauthorized)

	require.NoError(t, f.users.Delete(ctx, f.alice, f.alice.ID))
	assert.Equal(t, 1, f.blobs.Len())
	left, err := f.store.Documents().FindByOwner(ctx, repository.DocumentFilter{Owner: f.alice.ID})
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.ErrorIs(t, f.users.Delete(ctx, f.root, f.alice.ID), ErrNotFound)
}

// failingDelete is a UserRepository whose Delete always fails.
type failingDelete struct {
	repository.UserRepository
}

func (failingDelete) Delete(context.Context, int64) error { return errors.New("db down") }

func TestUserService_Delete_RowFailureKeepsBodies(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	doc, err := f.docs.Create(ctx, f.alice, NewDocument{Title: "notes", Content: "keep me", Access: "private"})
	require.NoError(t, err)

	svc := NewUserService(failingDelete{f.store.Users()}, f.store.Documents(), f.blobs, bcrypt.MinCost, nil)
	err = svc.Delete(ctx, f.alice, f.alice.ID)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "delete user", pe.Op)

	got, err := f.docs.Get(ctx, f.alice, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Content)
}

func TestUserService_Delete_BodyFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	mUsers := new(repoMocks.MockUserRepository)
	mDocs := new(repoMocks.MockDocumentRepository)
	mStore := new(storeMocks.MockStorage)

	mUsers.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1}, nil)
	mDocs.On("FindByOwner", ctx, repository.DocumentFilter{Owner: 1}).
		Return([]model.Document{{ID: 3, StoragePath: "documents/1/x.txt"}}, nil)
	mUsers.On("Delete", ctx, int64(1)).Return(nil)
	mStore.On("Delete", ctx, "documents/1/x.txt").Return(errors.New("storage fail"))

	core, logs := observer.New(zap.WarnLevel)
	svc := NewUserService(mUsers, mDocs, mStore, bcrypt.MinCost, zap.New(core))
	err := svc.Delete(ctx, policy.Principal{ID: 1, Role: model.RoleRegular}, 1)

	require.NoError(t, err)
	entries := logs.FilterMessage("orphaned document body").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "documents/1/x.txt", entries[0].ContextMap()["key"])
	mUsers.AssertExpectations(t)
	mStore.AssertExpectations(t)
}

func TestDocumentService_Get_MissingBody(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	doc, err := f.docs.Create(ctx, f.alice, NewDocument{Title: "notes", Content: "x"})
	require.NoError(t, err)
	require.NoError(t, f.blobs.Delete(ctx, doc.StoragePath))

	_, err = f.docs.Get(ctx, f.alice, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestDocumentService_Create_DeletedOwner(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.users.Delete(ctx, f.bob, f.bob.ID))

	_, err := f.docs.Create(ctx, f.bob, NewDocument{Title: "late", Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.blobs.Len())
}

func TestDocumentService_VisibilityEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	pub, err := f.docs.Create(ctx, f.alice, NewDocument{Title: "pub", Content: "hello"})
	require.NoError(t, err)
	priv, err := f.docs.Create(ctx, f.alice, NewDocument{Title: "priv", Content: "secret", Access: "private"})
	require.NoError(t, err)

	got, err := f.docs.Get(ctx, f.bob, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	_, err = f.docs.Get(ctx, f.bob, priv.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	got, err = f.docs.Get(ctx, f.root, priv.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Content)

	visible, err := f.docs.ListByOwner(ctx, f.bob, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, pub.ID, visible[0].ID)

	all, err := f.docs.ListByOwner(ctx, f.alice, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.docs.ListByOwner(ctx, f.alice, f.bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.docs.Delete(ctx, f.bob, priv.ID), ErrUnauthorized)
	require.NoError(t, f.docs.Delete(ctx, f.alice, priv.ID))
	assert.Equal(t, 1, f.blobs.Len())
}
