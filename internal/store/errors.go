package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by writes on a store that has not finished
	// Initialize, or whose Initialize failed.
	ErrNotReady = errors.New("store not ready")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// ConnectionError reports that the database could not be opened or its
// schema could not be created.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("open database %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ScanError reports a failed full-collection read.
type ScanError struct {
	Collection string
	Err        error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Collection, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// PreloadError reports that Initialize could not fill the cache.
// The store is left in StateFailed.
type PreloadError struct {
	Err error
}

func (e *PreloadError) Error() string {
	return fmt.Sprintf("preload: %v", e.Err)
}

func (e *PreloadError) Unwrap() error {
	return e.Err
}

// DeleteError reports a delete the database refused.
type DeleteError struct {
	Collection string
	Key        string
	Err        error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s %q: %v", e.Collection, e.Key, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// Conflict is the result of saving a record whose key is already taken.
// It is returned as a value, not an error.
type Conflict struct {
	Collection string
	Key        string
	Message    string
}

func (c *Conflict) String() string {
	return c.Message
}

// Fixed messages shown to the user on a key conflict.
const (
	PromptConflictMessage = "a prompt with that id already exists"
	ListConflictMessage   = "a list with that name already exists"
)

// IsConnectionError returns true if err is or wraps a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsScanError returns true if err is or wraps a *ScanError.
func IsScanError(err error) bool {
	var se *ScanError
	return errors.As(err, &se)
}
