package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackpoint/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type userRow struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	AuthProvider string
	Role         string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

func (row userRow) toDomain() users.User {
	return users.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		AuthProvider: row.AuthProvider,
		Role:         row.Role,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

const userColumns = `id, name, email, password_hash, auth_provider, role, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (users.User, error) {
	var row userRow
	err := r.queryer().QueryRow(ctx, `
INSERT INTO users (name, email, password_hash, auth_provider, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+userColumns,
		params.Name, params.Email, params.PasswordHash, params.AuthProvider, params.Role,
	).Scan(&row.ID, &row.Name, &row.Email, &row.PasswordHash, &row.AuthProvider, &row.Role, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return users.User{}, users.ErrEmailTaken
		}
		return users.User{}, fmt.Errorf("insert user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (users.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getBy(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (users.User, error) {
	var row userRow
	err := r.queryer().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg,
	).Scan(&row.ID, &row.Name, &row.Email, &row.PasswordHash, &row.AuthProvider, &row.Role, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, name, email string) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE users SET name = $2, email = $3, updated_at = now() WHERE id = $1`,
		id, name, email,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return users.ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}
