// Package export writes prompts as newline-delimited JSON training data.
//
// Each line is one object with "prompt" and "completion" keys, the format
// expected by completion fine-tuning jobs.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/roach88/pengineer/internal/record"
)

// Extension is the file extension of exported files.
const Extension = ".jsonl"

type line struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Write writes one JSON object per prompt to w, in the given order.
// HTML characters are not escaped.
func Write(w io.Writer, prompts []record.Prompt) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, p := range prompts {
		if err := enc.Encode(line{Prompt: p.Prompt, Completion: p.Completion}); err != nil {
			return fmt.Errorf("encode prompt %s: %w", p.ID, err)
		}
	}
	return bw.Flush()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileName returns the export file name for a list at time t,
// e.g. "prompts-default-list-20240102T150405.jsonl".
func FileName(listName string, t time.Time) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(listName), "-"), "-")
	if slug == "" {
		slug = "list"
	}
	return fmt.Sprintf("prompts-%s-%s%s", slug, t.UTC().Format("20060102T150405"), Extension)
}

// maxSuffix bounds the -N suffixes tried when a file name is taken.
const maxSuffix = 1000

// ToFile writes prompts to a new timestamped file in dir and returns its path.
// An existing file is never overwritten: when the name is taken, -1, -2, ...
// is appended before the extension.
func ToFile(dir, listName string, t time.Time, prompts []record.Prompt) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f, path, err := createUnique(dir, FileName(listName, t))
	if err != nil {
		return "", err
	}

	if err := Write(f, prompts); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

func createUnique(dir, name string) (*os.File, string, error) {
	base := strings.TrimSuffix(name, Extension)
	for n := 0; n <= maxSuffix; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d%s", base, n, Extension)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create export file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("create export file: %s and %d suffixed names already exist", name, maxSuffix)
}
