package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackpoint/server/internal/domain/refs"
)

var _ refs.Directory = (*RefsDirectory)(nil)

// RefsDirectory backs the reference validator with existence checks
// against the relational tables.
type RefsDirectory struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *RefsDirectory) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *RefsDirectory) exists(ctx context.Context, query string, id int64) (bool, error) {
	var exists bool
	if err := r.queryer().QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return exists, nil
}

func (r *RefsDirectory) EventExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id)
}

func (r *RefsDirectory) UserExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *RefsDirectory) TeamExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`, id)
}
