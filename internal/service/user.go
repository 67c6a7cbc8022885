package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dms/internal/model"
	"dms/internal/policy"
	"dms/internal/repository"
	"dms/internal/storage"
)

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// UserUpdate carries the fields to change. Empty strings and a zero Role keep the stored value.
type UserUpdate struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Lastname  string
	Role      model.Role
}

// UserService manages user profiles on behalf of an authenticated requester.
type UserService interface {
	// List returns users using limit/offset and a total count. Admins only.
	List(ctx context.Context, requester policy.Principal, limit, offset int) (*UserListResult, error)

	// Get returns the user identified by id.
	Get(ctx context.Context, requester policy.Principal, id int64) (*model.User, error)

	// Update merges the non-empty fields of upd into the stored user.
	Update(ctx context.Context, requester policy.Principal, id int64, upd UserUpdate) (*model.User, error)

	// Delete removes the user, its documents and their stored bodies.
	Delete(ctx context.Context, requester policy.Principal, id int64) error
}

type userService struct {
	users    repository.UserRepository
	docs     repository.DocumentRepository
	store    storage.Storage
	hashCost int
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, docs repository.DocumentRepository, store storage.Storage, hashCost int, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &userService{users: users, docs: docs, store: store, hashCost: hashCost, logger: logger, now: time.Now}
}

func (s *userService) List(ctx context.Context, requester policy.Principal, limit, offset int) (*UserListResult, error) {
	if !policy.IsAdmin(requester.Role) {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.users.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, storeError("list users", err)
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) Get(ctx context.Context, requester policy.Principal, id int64) (*model.User, error) {
	if !policy.HasPermission(requester, id) {
		return nil, ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find user", err)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, requester policy.Principal, id int64, upd UserUpdate) (*model.User, error) {
	if !policy.HasPermission(requester, id) {
		return nil, ErrUnauthorized
	}
	if upd.Role != 0 {
		if !policy.IsAdmin(requester.Role) {
			return nil, ErrUnauthorized
		}
		if !upd.Role.Valid() {
			return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %d", upd.Role)}
		}
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find user", err)
	}

	if v := strings.TrimSpace(upd.Username); v != "" {
		u.Username = v
	}
	if strings.TrimSpace(upd.Email) != "" {
		email, err := normalizeEmail(upd.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if v := strings.TrimSpace(upd.Firstname); v != "" {
		u.Firstname = v
	}
	if v := strings.TrimSpace(upd.Lastname); v != "" {
		u.Lastname = v
	}
	if upd.Password != "" {
		hash, err := hashPassword(upd.Password, s.hashCost)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, err
			}
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if upd.Role != 0 {
		u.Role = upd.Role
	}
	u.UpdatedAt = s.now().UTC()

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, storeError("update user", err)
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, requester policy.Principal, id int64) error {
	if !policy.HasPermission(requester, id) {
		return ErrUnauthorized
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return storeError("find user", err)
	}

	docs, err := s.docs.FindByOwner(ctx, repository.DocumentFilter{Owner: id})
	if err != nil {
		return storeError("list documents", err)
	}
	// Rows cascade with the user; bodies are removed only once the row is gone.
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError("delete user", err)
	}
	for _, d := range docs {
		if err := s.store.Delete(ctx, d.StoragePath); err != nil {
			s.logger.Warn("orphaned document body",
				zap.Int64("user_id", id), zap.String("key", d.StoragePath), zap.Error(err))
		}
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id), zap.Int("documents", len(docs)))
	return nil
}
