// Package repository provides database access layer.
// All queries run through a request-scoped Session acquired from the pool.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository owns the database connection pool and hands out Sessions.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Acquire checks out one connection from the pool as a request-scoped
// Session. The caller owns the Session for the duration of the request and
// must call Release exactly at request exit.
func (r *Repository) Acquire(ctx context.Context) (*Session, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer going through a Session.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// Session is a handle to a single checked-out connection, bound to the
// lifetime of one request. It is not safe for use by concurrent requests.
type Session struct {
	conn     *pgxpool.Conn
	released bool
}

// Release returns the underlying connection to the pool. Safe to call more
// than once; only the first call releases.
func (s *Session) Release() {
	if s.released {
		return
	}
	s.released = true
	s.conn.Release()
}

// Released reports whether the session has been returned to the pool.
func (s *Session) Released() bool {
	return s.released
}
