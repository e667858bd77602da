// Package sqlite implements the repository interfaces on a local SQLite
// dataset with the same semantics as the content store: posts newest first,
// authors expanded, a tweet count per user.
//
// WHY A LOCAL DATASET?
// The content store is a hosted service. A local dataset lets the server run
// offline (make a fixture file, point store.sqlite_path at ":memory:" or a
// file) and gives the end-to-end tests a real backend to paginate over.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so there is no CGo
// and no C compiler in the build.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DefaultQueryTimeout bounds each repository call unless SetQueryTimeout
// says otherwise.
const DefaultQueryTimeout = 5 * time.Second

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn         *sql.DB
	queryTimeout time.Duration
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/tweetfeed.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests, throwaway fixtures)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is its own database, so pin the pool to one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, queryTimeout: DefaultQueryTimeout}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// SetQueryTimeout sets the bound applied to each repository call on top of
// the caller's context. Zero or less disables it.
func (db *DB) SetQueryTimeout(d time.Duration) {
	db.queryTimeout = d
}

// bounded derives the context of one repository call.
func (db *DB) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the tables. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			nickname    TEXT NOT NULL UNIQUE,
			bio         TEXT NOT NULL DEFAULT '',
			photo_ref   TEXT NOT NULL DEFAULT '',
			joined_date TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// created_at is a fixed-width UTC timestamp, so text order is time order.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tweets (
			id         TEXT PRIMARY KEY,
			text       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			user_id    TEXT NOT NULL REFERENCES users(id),
			likes      INTEGER NOT NULL DEFAULT 0,
			retweets   INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_tweets_created_at ON tweets(created_at);
		CREATE INDEX IF NOT EXISTS idx_tweets_user_id ON tweets(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tweets table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tweet_cards (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			nickname   TEXT NOT NULL,
			text       TEXT NOT NULL DEFAULT '',
			photo_ref  TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tweet_cards_nickname ON tweet_cards(nickname);
	`)
	if err != nil {
		return fmt.Errorf("creating tweet_cards table: %w", err)
	}

	return nil
}
