// Package memory provides in-process repository implementations with the same contract as the
// PostgreSQL ones. They back the service tests.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dms/internal/model"
	"dms/internal/repository"
)

// Store holds users and documents. Deleting a user removes the user's documents, mirroring
// the ON DELETE CASCADE foreign key.
type Store struct {
	mu      sync.RWMutex
	users   map[int64]model.User
	docs    map[int64]model.Document
	nextUID int64
	nextDID int64
}

func NewStore() *Store {
	return &Store{
		users: make(map[int64]model.User),
		docs:  make(map[int64]model.Document),
	}
}

// Users returns a UserRepository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Documents returns a DocumentRepository view of the store.
func (s *Store) Documents() *DocumentRepository { return &DocumentRepository{s: s} }

type UserRepository struct{ s *Store }

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByIdentifier(_ context.Context, username, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.sortedUsers() {
		if (username != "" && u.Username == username) || (email != "" && u.Email == strings.ToLower(email)) {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r *UserRepository) List(_ context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.sortedUsers()
	return &repository.PageResult[model.User]{Items: page(all, pq), Total: len(all)}, nil
}

func (r *UserRepository) Create(_ context.Context, u *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkUnique(0, u.Username, u.Email); err != nil {
		return nil, err
	}
	r.s.nextUID++
	out := *u
	out.ID = r.s.nextUID
	out.UpdatedAt = out.CreatedAt
	r.s.users[out.ID] = out
	return &out, nil
}

func (r *UserRepository) Update(_ context.Context, u *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.users[u.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if err := r.s.checkUnique(u.ID, u.Username, u.Email); err != nil {
		return nil, err
	}
	out := *u
	out.CreatedAt = prev.CreatedAt
	r.s.users[out.ID] = out
	return &out, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.users, id)
	for docID, d := range r.s.docs {
		if d.Owner == id {
			delete(r.s.docs, docID)
		}
	}
	return nil
}

type DocumentRepository struct{ s *Store }

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

func (r *DocumentRepository) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[doc.Owner]; !ok {
		return nil, fmt.Errorf("%w: owner %d", repository.ErrMissingReference, doc.Owner)
	}
	for _, d := range r.s.docs {
		if d.StoragePath == doc.StoragePath {
			return nil, fmt.Errorf("%w: documents_storage_path_key", repository.ErrDuplicate)
		}
	}
	r.s.nextDID++
	out := *doc
	out.ID = r.s.nextDID
	out.Content = ""
	out.UpdatedAt = out.CreatedAt
	r.s.docs[out.ID] = out
	return &out, nil
}

func (r *DocumentRepository) FindByID(_ context.Context, id int64) (*model.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (r *DocumentRepository) FindByOwner(_ context.Context, f repository.DocumentFilter) ([]model.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]model.Document, 0)
	for _, d := range r.s.docs {
		if d.Owner != f.Owner {
			continue
		}
		if f.Access != nil && d.Access != *f.Access {
			continue
		}
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (r *DocumentRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.docs, id)
	return nil
}

// checkUnique must be called with the write lock held.
func (s *Store) checkUnique(selfID int64, username, email string) error {
	for id, u := range s.users {
		if id == selfID {
			continue
		}
		if u.Username == username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
		if u.Email == email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	return nil
}

// sortedUsers must be called with at least the read lock held.
func (s *Store) sortedUsers() []model.User {
	all := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func page[T any](all []T, pq repository.PageQuery) []T {
	if pq.Offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if pq.Limit > 0 && pq.Offset+pq.Limit < end {
		end = pq.Offset + pq.Limit
	}
	return append([]T(nil), all[pq.Offset:end]...)
}
