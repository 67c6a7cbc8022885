package repository

import (
	"context"

	"dms/internal/model"
)

// UserRepository defines data access for users.
type UserRepository interface {
	// FindByIdentifier returns the user whose username equals username OR whose email equals email.
	// Empty arguments never match.
	FindByIdentifier(ctx context.Context, username, email string) (*model.User, error)

	// FindByID returns a user by its ID.
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// List returns a page of users ordered by ID and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)

	// Create inserts a user and returns the stored row with its generated ID and timestamps.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// Update overwrites every mutable column of the user identified by u.ID.
	Update(ctx context.Context, u *model.User) (*model.User, error)

	// Delete removes a user. Documents owned by the user are removed with it.
	Delete(ctx context.Context, id int64) error
}
