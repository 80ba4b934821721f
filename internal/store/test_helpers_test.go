package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/roach88/pengineer/internal/record"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestStore creates an initialized store backed by a temp file.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	return createTestStoreAt(t, filepath.Join(t.TempDir(), DatabaseFile))
}

func createTestStoreAt(t *testing.T, path string) *Store {
	t.Helper()
	s := New(path, WithLogger(testLogger()))
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// rawDB returns the store's open handle for fault injection.
func rawDB(t *testing.T, s *Store) *sql.DB {
	t.Helper()
	db, err := s.conn.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return db
}

// counter is a subscriber that counts notifications.
type counter struct {
	n atomic.Int64
}

func (c *counter) inc() { c.n.Add(1) }

func (c *counter) count() int64 { return c.n.Load() }

func subscribeCounters(s *Store, n int) []*counter {
	counters := make([]*counter, n)
	for i := range counters {
		counters[i] = &counter{}
		s.Subscribe(counters[i].inc)
	}
	return counters
}

func testPrompt(id string) record.Prompt {
	return record.Prompt{
		ID:         id,
		ListName:   record.DefaultListName,
		Prompt:     "Capital of Italy?",
		Completion: "Rome",
	}
}

// mustSaveList saves a list and fails the test on an error or conflict.
func mustSaveList(t *testing.T, s *Store, name string) {
	t.Helper()
	conflict, err := s.SaveList(context.Background(), record.List{Name: name})
	if err != nil {
		t.Fatalf("SaveList(%q) failed: %v", name, err)
	}
	if conflict != nil {
		t.Fatalf("SaveList(%q): unexpected conflict", name)
	}
}
