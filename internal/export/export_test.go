package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pengineer/internal/record"
	"github.com/roach88/pengineer/internal/testutil"
)

var fixedTime = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

func samplePrompts() []record.Prompt {
	return []record.Prompt{
		{ID: "a", ListName: record.DefaultListName, Prompt: "Capital of Italy?", Completion: "Rome"},
		{ID: "b", ListName: record.DefaultListName, Prompt: "Is 1 < 2 & 3 > 2?", Completion: "yes"},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePrompts()))

	want := `{"prompt":"Capital of Italy?","completion":"Rome"}
{"prompt":"Is 1 < 2 & 3 > 2?","completion":"yes"}
`
	assert.Equal(t, want, buf.String())
}

func TestWrite_OneObjectPerLine(t *testing.T) {
	prompts := []record.Prompt{
		{ID: "a", Prompt: "line one\nline two", Completion: "done"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, prompts))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, map[string]string{"prompt": "line one\nline two", "completion": "done"}, got)
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestFileName(t *testing.T) {
	tests := []struct {
		list string
		want string
	}{
		{record.DefaultListName, "prompts-default-list-20240102T150405.jsonl"},
		{"  Geo/Capitals!! ", "prompts-geo-capitals-20240102T150405.jsonl"},
		{"???", "prompts-list-20240102T150405.jsonl"},
	}
	for _, tt := range tests {
		t.Run(tt.list, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.list, fixedTime))
		})
	}
}

func TestFileName_UsesUTC(t *testing.T) {
	local := fixedTime.In(time.FixedZone("X", 3*60*60))
	assert.Equal(t, FileName("a", fixedTime), FileName("a", local))
}

func TestToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	clock := testutil.NewFixedClock(fixedTime)

	path, err := ToFile(dir, record.DefaultListName, clock.Now(), samplePrompts())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompts-default-list-20240102T150405.jsonl"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))

	// same second: the first file is kept and the second gets a suffix
	again, err := ToFile(dir, record.DefaultListName, clock.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompts-default-list-20240102T150405-1.jsonl"), again)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")), "existing export is not overwritten")

	third, err := ToFile(dir, record.DefaultListName, clock.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompts-default-list-20240102T150405-2.jsonl"), third)

	clock.Advance(time.Second)
	second, err := ToFile(dir, record.DefaultListName, clock.Now(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
}

func TestToFile_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := ToFile(file, record.DefaultListName, fixedTime, nil)
	assert.Error(t, err)
}
