package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/sync/singleflight"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseFile is the fixed name of the database inside a data directory.
const DatabaseFile = "prompts.db"

// Schema version tracking:
// 0 - empty database
// 1 - prompts and lists tables
const SchemaVersion = 1

// PathIn returns the database path inside dir.
func PathIn(dir string) string {
	return filepath.Join(dir, DatabaseFile)
}

// Conn owns the single database handle of a store.
//
// Open is lazy and idempotent: the first call opens the database and
// creates the schema, later calls return the cached handle. Concurrent
// first calls share one open attempt.
type Conn struct {
	path  string
	group singleflight.Group

	mu sync.Mutex
	db *sql.DB
}

// NewConn returns a Conn for the database at path. Nothing is opened
// until Open is called. ":memory:" gives a private in-memory database.
func NewConn(path string) *Conn {
	return &Conn{path: path}
}

// Path returns the database path.
func (c *Conn) Path() string {
	return c.path
}

// Open returns the database handle, opening it on first use.
// Failures are returned as *ConnectionError and are not retried.
//
// The shared open is detached from any one caller's cancellation; a caller
// whose ctx ends stops waiting and gets ctx.Err() while the others carry on.
func (c *Conn) Open(ctx context.Context) (*sql.DB, error) {
	if db := c.cached(); db != nil {
		return db, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	openCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("open", func() (any, error) {
		if db := c.cached(); db != nil {
			return db, nil
		}

		db, err := openDatabase(openCtx, c.path)
		if err != nil {
			return nil, &ConnectionError{Path: c.path, Err: err}
		}

		c.mu.Lock()
		c.db = db
		c.mu.Unlock()
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*sql.DB), nil
	}
}

// Close closes the handle if one is open. A later Open reopens.
func (c *Conn) Close() error {
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

func (c *Conn) cached() *sql.DB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

func openDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps
	// ":memory:" databases alive for the lifetime of the handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates the collections when the database is older than
// SchemaVersion. A database from a newer build is refused.
func applySchema(ctx context.Context, db *sql.DB) error {
	version, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	if version == SchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return tx.Commit()
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// isConflict reports whether err is a primary key violation.
func isConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code != sqlite3.ErrConstraint {
			return false
		}
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
