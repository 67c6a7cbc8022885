package postgres

import (
	"context"
	"database/sql"

	"dms/internal/model"
	"dms/internal/repository"
)

const documentColumns = `id, title, owner, access, content_type, size, storage_path, created_at, updated_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Owner,
		&d.Access,
		&d.ContentType,
		&d.Size,
		&d.StoragePath,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (title, owner, access, content_type, size, storage_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + documentColumns
	out, err := scanDocument(r.db.QueryRowContext(ctx, q,
		doc.Title,
		doc.Owner,
		doc.Access,
		doc.ContentType,
		doc.Size,
		doc.StoragePath,
		doc.CreatedAt,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindByOwner returns the owner's documents, optionally restricted to one access level.
func (r *DocumentPostgres) FindByOwner(ctx context.Context, f repository.DocumentFilter) ([]model.Document, error) {
	q := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner = $1`
	args := []any{f.Owner}
	if f.Access != nil {
		q += ` AND access = $2`
		args = append(args, *f.Access)
	}
	q += `
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
