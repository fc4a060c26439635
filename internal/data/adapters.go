package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// dbAdapter runs fully rendered SQL statements against one of the
// supported connection types: *sql.DB, *sqlx.DB or *pgxpool.Pool.
type dbAdapter interface {
	Query(ctx context.Context, query string) (dbRows, error)
	Exec(ctx context.Context, query string) (dbResult, error)
	Close() error
}

// dbRows is the subset of a result set the stores read from.
type dbRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// dbResult reports how many rows a statement touched.
type dbResult interface {
	RowsAffected() (int64, error)
}

// sqlAdapter implements dbAdapter for sql.DB.
type sqlAdapter struct {
	db *sql.DB
}

func (s *sqlAdapter) Query(ctx context.Context, query string) (dbRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *sqlAdapter) Exec(ctx context.Context, query string) (dbResult, error) {
	return s.db.ExecContext(ctx, query)
}

func (s *sqlAdapter) Close() error {
	return s.db.Close()
}

// sqlxAdapter implements dbAdapter for sqlx.DB.
type sqlxAdapter struct {
	db *sqlx.DB
}

func (s *sqlxAdapter) Query(ctx context.Context, query string) (dbRows, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *sqlxAdapter) Exec(ctx context.Context, query string) (dbResult, error) {
	return s.db.ExecContext(ctx, query)
}

func (s *sqlxAdapter) Close() error {
	return s.db.Close()
}

// pgxAdapter implements dbAdapter for pgxpool.Pool.
type pgxAdapter struct {
	pool *pgxpool.Pool
}

func (p *pgxAdapter) Query(ctx context.Context, query string) (dbRows, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (p *pgxAdapter) Exec(ctx context.Context, query string) (dbResult, error) {
	tag, err := p.pool.Exec(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgxResult{tag: tag}, nil
}

func (p *pgxAdapter) Close() error {
	p.pool.Close()
	return nil
}

// pgxRows wraps pgx.Rows, whose Close has no error return.
type pgxRows struct {
	rows pgx.Rows
}

func (p *pgxRows) Next() bool             { return p.rows.Next() }
func (p *pgxRows) Scan(dest ...any) error { return p.rows.Scan(dest...) }
func (p *pgxRows) Err() error             { return p.rows.Err() }

func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag.
type pgxResult struct {
	tag pgconn.CommandTag
}

func (p pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}
