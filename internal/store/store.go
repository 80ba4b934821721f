package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/pengineer/internal/record"
)

// State is the lifecycle position of a Store.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store is the local prompt store.
//
// Lifecycle: New → Initialize → (reads and writes) → Close.
// Reads on a store that is not ready return empty slices; writes return
// ErrNotReady or ErrClosed.
type Store struct {
	conn   *Conn
	cache  cache
	subs   *subscriptions
	logger *slog.Logger

	// lifecycleMu serializes Initialize and Close.
	lifecycleMu sync.Mutex
	// writeMu serializes mutations so the cache sees writes in commit order.
	writeMu sync.Mutex

	stateMu sync.RWMutex
	state   State
}

// New creates a store for the database at path without opening it.
func New(path string, opts ...Option) *Store {
	s := &Store{
		conn:   NewConn(path),
		subs:   newSubscriptions(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Store) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Initialize opens the database, makes sure the default list exists and
// loads both collections into the cache.
//
// Calling Initialize on a ready store does nothing. After a failure it may
// be called again.
func (s *Store) Initialize(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	switch s.State() {
	case StateReady:
		return nil
	case StateClosed:
		return ErrClosed
	}
	s.setState(StateInitializing)

	db, err := s.conn.Open(ctx)
	if err != nil {
		return s.fail("open database", err)
	}

	if err := insertList(ctx, db, record.List{Name: record.DefaultListName}); err != nil && !isConflict(err) {
		return s.fail("create default list", err)
	}

	prompts, lists, err := scanAll(ctx, db)
	if err != nil {
		return s.fail("preload", &PreloadError{Err: err})
	}
	s.cache.replace(prompts, lists)
	s.setState(StateReady)

	s.logger.Info("store ready",
		"path", s.conn.Path(),
		"prompts", len(prompts),
		"lists", len(lists),
	)
	return nil
}

func (s *Store) fail(step string, err error) error {
	s.setState(StateFailed)
	s.logger.Error("store initialization failed", "step", step, "error", err)
	return err
}

// Close releases the database handle. The store cannot be reused.
func (s *Store) Close() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.setState(StateClosed)
	s.cache.replace(nil, nil)
	return s.conn.Close()
}

// Subscribe registers fn to be called after every successful save or delete.
func (s *Store) Subscribe(fn func()) *Subscription {
	return s.subs.add(fn)
}

// Prompts returns a snapshot of all prompts in insertion order.
func (s *Store) Prompts() []record.Prompt {
	if s.State() != StateReady {
		return []record.Prompt{}
	}
	return s.cache.snapshotPrompts()
}

// PromptsInList returns a snapshot of the prompts filed under name.
// Composed and decomposed spellings of a name match each other.
func (s *Store) PromptsInList(name string) []record.Prompt {
	if s.State() != StateReady {
		return []record.Prompt{}
	}
	return s.cache.promptsIn(name)
}

// Lists returns a snapshot of all lists in insertion order.
func (s *Store) Lists() []record.List {
	if s.State() != StateReady {
		return []record.List{}
	}
	return s.cache.snapshotLists()
}

// SavePrompt inserts p. If a prompt with the same ID exists, nothing is
// written and a *Conflict is returned with a nil error.
func (s *Store) SavePrompt(ctx context.Context, p record.Prompt) (*Conflict, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.write(ctx,
		func(db *sql.DB) error { return insertPrompt(ctx, db, p) },
		func() { s.cache.addPrompt(p) },
	)
	if err == nil {
		s.logger.Debug("prompt saved", "id", p.ID, "list", p.ListName)
		return nil, nil
	}
	if isConflict(err) {
		s.logger.Debug("prompt conflict", "id", p.ID)
		return &Conflict{Collection: "prompts", Key: p.ID, Message: PromptConflictMessage}, nil
	}
	if !isLifecycleError(err) {
		s.logger.Warn("save prompt failed", "id", p.ID, "error", err)
		err = fmt.Errorf("save prompt: %w", err)
	}
	return nil, err
}

// DeletePrompt removes the prompt with id. Deleting an absent id succeeds.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	err := s.write(ctx,
		func(db *sql.DB) error { return deleteByKey(ctx, db, "prompts", id) },
		func() { s.cache.removePrompt(id) },
	)
	if err != nil {
		if !isLifecycleError(err) {
			s.logger.Warn("delete prompt failed", "id", id, "error", err)
		}
		return err
	}
	s.logger.Debug("prompt deleted", "id", id)
	return nil
}

// SaveList inserts l. If a list with the same name exists, nothing is
// written and a *Conflict is returned with a nil error.
func (s *Store) SaveList(ctx context.Context, l record.List) (*Conflict, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	err := s.write(ctx,
		func(db *sql.DB) error { return insertList(ctx, db, l) },
		func() { s.cache.addList(l) },
	)
	if err == nil {
		s.logger.Debug("list saved", "name", l.Name)
		return nil, nil
	}
	if isConflict(err) {
		s.logger.Debug("list conflict", "name", l.Name)
		return &Conflict{Collection: "lists", Key: l.Name, Message: ListConflictMessage}, nil
	}
	if !isLifecycleError(err) {
		s.logger.Warn("save list failed", "name", l.Name, "error", err)
		err = fmt.Errorf("save list: %w", err)
	}
	return nil, err
}

// DeleteList removes the list called name. Prompts filed under it are
// left in place. Deleting an absent name succeeds.
func (s *Store) DeleteList(ctx context.Context, name string) error {
	err := s.write(ctx,
		func(db *sql.DB) error { return deleteByKey(ctx, db, "lists", name) },
		func() { s.cache.removeList(name) },
	)
	if err != nil {
		if !isLifecycleError(err) {
			s.logger.Warn("delete list failed", "name", name, "error", err)
		}
		return err
	}
	s.logger.Debug("list deleted", "name", name)
	return nil
}

// Reload rescans both collections and replaces the cache. It picks up
// writes made by other processes. Subscribers are not notified.
func (s *Store) Reload(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	prompts, lists, err := scanAll(ctx, db)
	if err != nil {
		return err
	}
	s.cache.replace(prompts, lists)
	return nil
}

// write runs op and, if it succeeds, apply. Subscribers are notified once
// after the write lock is released.
func (s *Store) write(ctx context.Context, op func(*sql.DB) error, apply func()) error {
	s.writeMu.Lock()
	db, err := s.handle(ctx)
	if err == nil {
		err = op(db)
	}
	if err == nil {
		apply()
	}
	s.writeMu.Unlock()

	if err != nil {
		return err
	}
	s.subs.notify()
	return nil
}

func (s *Store) handle(ctx context.Context) (*sql.DB, error) {
	switch s.State() {
	case StateReady:
		return s.conn.Open(ctx)
	case StateClosed:
		return nil, ErrClosed
	default:
		return nil, ErrNotReady
	}
}

func isLifecycleError(err error) bool {
	return errors.Is(err, ErrNotReady) || errors.Is(err, ErrClosed)
}

func insertPrompt(ctx context.Context, db *sql.DB, p record.Prompt) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO prompts (id, list_name, prompt, completion)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.ListName, p.Prompt, p.Completion)
	return err
}

func insertList(ctx context.Context, db *sql.DB, l record.List) error {
	_, err := db.ExecContext(ctx, `INSERT INTO lists (name) VALUES (?)`, l.Name)
	return err
}

// deleteByKey deletes one record. The table name is never user input.
func deleteByKey(ctx context.Context, db *sql.DB, table, key string) error {
	column := "id"
	if table == "lists" {
		column = "name"
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column), key)
	if err != nil {
		return &DeleteError{Collection: table, Key: key, Err: err}
	}
	return nil
}
