package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/pengineer/internal/record"
)

// cache mirrors both collections in insertion order.
// It is filled wholesale by replace and afterwards only appended to or
// filtered, always after the matching database write has succeeded.
type cache struct {
	mu      sync.RWMutex
	prompts []record.Prompt
	lists   []record.List
}

func (c *cache) replace(prompts []record.Prompt, lists []record.List) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = prompts
	c.lists = lists
}

func (c *cache) addPrompt(p record.Prompt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, p)
}

func (c *cache) removePrompt(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = slices.DeleteFunc(c.prompts, func(p record.Prompt) bool {
		return p.ID == id
	})
}

func (c *cache) addList(l record.List) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = append(c.lists, l)
}

func (c *cache) removeList(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = slices.DeleteFunc(c.lists, func(l record.List) bool {
		return l.Name == name
	})
}

// snapshotPrompts returns a copy; callers may keep or modify it.
func (c *cache) snapshotPrompts() []record.Prompt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]record.Prompt, len(c.prompts))
	copy(out, c.prompts)
	return out
}

func (c *cache) snapshotLists() []record.List {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]record.List, len(c.lists))
	copy(out, c.lists)
	return out
}

func (c *cache) promptsIn(listName string) []record.Prompt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []record.Prompt{}
	for _, p := range c.prompts {
		if record.SameList(p.ListName, listName) {
			out = append(out, p)
		}
	}
	return out
}

// scanAll reads both collections in full.
func scanAll(ctx context.Context, db *sql.DB) ([]record.Prompt, []record.List, error) {
	prompts, err := scanPrompts(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	lists, err := scanLists(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	return prompts, lists, nil
}

// scanPrompts reads every prompt ordered by rowid, which matches the
// order the cache appends in.
func scanPrompts(ctx context.Context, db *sql.DB) ([]record.Prompt, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, list_name, prompt, completion
		FROM prompts
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, &ScanError{Collection: "prompts", Err: err}
	}
	defer rows.Close()

	prompts := []record.Prompt{}
	for rows.Next() {
		var p record.Prompt
		if err := rows.Scan(&p.ID, &p.ListName, &p.Prompt, &p.Completion); err != nil {
			return nil, &ScanError{Collection: "prompts", Err: fmt.Errorf("scan row: %w", err)}
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &ScanError{Collection: "prompts", Err: err}
	}
	return prompts, nil
}

func scanLists(ctx context.Context, db *sql.DB) ([]record.List, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name
		FROM lists
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, &ScanError{Collection: "lists", Err: err}
	}
	defer rows.Close()

	lists := []record.List{}
	for rows.Next() {
		var l record.List
		if err := rows.Scan(&l.Name); err != nil {
			return nil, &ScanError{Collection: "lists", Err: fmt.Errorf("scan row: %w", err)}
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &ScanError{Collection: "lists", Err: err}
	}
	return lists, nil
}
