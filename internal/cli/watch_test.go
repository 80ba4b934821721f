package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pengineer/internal/record"
	"github.com/roach88/pengineer/internal/store"
)

func TestIsDatabaseEvent(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"db write", fsnotify.Event{Name: filepath.Join(dir, "prompts.db"), Op: fsnotify.Write}, true},
		{"wal write", fsnotify.Event{Name: filepath.Join(dir, "prompts.db-wal"), Op: fsnotify.Write}, true},
		{"db create", fsnotify.Event{Name: filepath.Join(dir, "prompts.db"), Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: filepath.Join(dir, "prompts.db"), Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, "prompts.db-shm"), Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDatabaseEvent(tt.event))
		})
	}
}

func TestWatchLoopReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := store.PathIn(dir)
	ctx := context.Background()

	watched := store.New(path)
	require.NoError(t, watched.Initialize(ctx))
	defer watched.Close()

	writer := store.New(path)
	require.NoError(t, writer.Initialize(ctx))
	defer writer.Close()

	w, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(dir))

	loopCtx, cancel := context.WithCancel(ctx)
	reloaded := make(chan int, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(loopCtx, w, watched, func(err error) {
			if err == nil {
				reloaded <- len(watched.Prompts())
			}
		})
	}()

	conflict, err := writer.SavePrompt(ctx, record.Prompt{ID: "p1", ListName: record.DefaultListName, Prompt: "Q"})
	require.NoError(t, err)
	require.Nil(t, conflict)

	deadline := time.After(5 * time.Second)
	for n := 0; n != 1; {
		select {
		case n = <-reloaded:
		case <-deadline:
			t.Fatal("store was not reloaded after an external write")
		}
	}

	cancel()
	require.NoError(t, <-done)
}
