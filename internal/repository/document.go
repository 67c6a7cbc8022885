package repository

import (
	"context"

	"dms/internal/model"
)

// DocumentFilter narrows FindByOwner. A nil Access returns documents of every access level.
type DocumentFilter struct {
	Owner  int64
	Access *model.Access
}

// DocumentRepository defines data access for document metadata.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// FindByOwner returns the documents matching the filter, newest first.
	FindByOwner(ctx context.Context, f DocumentFilter) ([]model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id int64) error
}
