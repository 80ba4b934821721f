package record

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DefaultListName is the list that always exists once a store is initialized.
const DefaultListName = "Default List"

// Prompt is a single prompt/completion pair.
type Prompt struct {
	ID         string `json:"id" yaml:"id"`
	ListName   string `json:"list" yaml:"list"`
	Prompt     string `json:"prompt" yaml:"prompt"`
	Completion string `json:"completion" yaml:"completion"`
}

// List is a named group of prompts.
type List struct {
	Name string `json:"name" yaml:"name"`
}

// ValidationError reports a record that cannot be stored.
type ValidationError struct {
	Kind    string // "prompt" or "list"
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Message)
}

// Validate checks that p can be stored. ListName is a soft reference and
// may be anything, including empty.
func (p Prompt) Validate() error {
	if p.ID == "" {
		return &ValidationError{Kind: "prompt", Field: "id", Message: "must not be empty"}
	}
	return nil
}

// Validate checks that l can be stored.
func (l List) Validate() error {
	if l.Name == "" {
		return &ValidationError{Kind: "list", Field: "name", Message: "must not be empty"}
	}
	return nil
}

// NormalizeName puts a list name in NFC form.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// SameList reports whether a and b name the same list once both are in
// NFC form. Stored names are never rewritten.
func SameList(a, b string) bool {
	return a == b || NormalizeName(a) == NormalizeName(b)
}
