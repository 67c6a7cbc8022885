package postgres

import (
	"context"
	"database/sql"

	"dms/internal/model"
	"dms/internal/repository"
)

const userColumns = `id, username, email, firstname, lastname, password, role, created_at, updated_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Firstname,
		&u.Lastname,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserPostgres) FindByIdentifier(ctx context.Context, username, email string) (*model.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = lower($2))
		ORDER BY id
		LIMIT 1
	`
	return scanUser(r.db.QueryRowContext(ctx, q, username, email))
}

func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	const qCount = `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (username, email, firstname, lastname, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.Username,
		u.Email,
		u.Firstname,
		u.Lastname,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users
		SET username = $2, email = $3, firstname = $4, lastname = $5, password = $6, role = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Username,
		u.Email,
		u.Firstname,
		u.Lastname,
		u.PasswordHash,
		u.Role,
		u.UpdatedAt,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *UserPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
