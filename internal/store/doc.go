// Package store provides the SQLite-backed local prompt store.
//
// The store keeps two keyed collections:
//   - prompts: prompt/completion pairs keyed by a caller-generated id
//   - lists: named groups keyed by name
//
// # Components
//
//   - Conn: lazily opens the single database handle and creates the
//     schema on first use, gated by PRAGMA user_version.
//   - cache: in-memory mirror of both collections, loaded by a full scan
//     during Initialize and then changed only in lock-step with
//     successful writes.
//   - subscriptions: callbacks invoked once after every successful save
//     or delete.
//   - Store: the public surface coordinating the three.
//
// Reads (Prompts, Lists, PromptsInList) are served from the cache and
// never touch the database.
//
// # Conflicts
//
// Saving a record whose key already exists is not an error. SavePrompt and
// SaveList return a *Conflict value carrying a fixed user-facing message
// and a nil error, so callers can show it and carry on.
//
// # Database Configuration
//
//   - WAL mode: readers in other processes (pengineer watch) see commits
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - one open connection
package store
