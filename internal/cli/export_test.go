package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWritesList(t *testing.T) {
	env := newCLIEnv(t)
	outDir := t.TempDir()

	_, err := env.run("prompt", "add", "--list", "Geography", "--prompt", "Capital of Italy?", "--completion", "Rome")
	require.NoError(t, err)
	_, err = env.run("prompt", "add", "--prompt", "ignored")
	require.NoError(t, err)
	_, err = env.run("prompt", "add", "--list", "Geography", "--prompt", "<b>?</b>", "--completion", "&")
	require.NoError(t, err)

	out, err := env.run("export", "--list", "Geography", "--dir", outDir)
	require.NoError(t, err)

	path := filepath.Join(outDir, "prompts-geography-20240301T120000.jsonl")
	assert.Equal(t, "Exported 2 prompts to "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		`{"prompt":"Capital of Italy?","completion":"Rome"}`+"\n"+
			`{"prompt":"<b>?</b>","completion":"&"}`+"\n",
		string(data))
}

func TestExportJSON(t *testing.T) {
	env := newCLIEnv(t)
	outDir := t.TempDir()

	resp, err := env.runJSON("export", "--dir", outDir)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"path":    filepath.Join(outDir, "prompts-default-list-20240301T120000.jsonl"),
		"list":    "Default List",
		"prompts": float64(0),
	}, resp.Data)
}

func TestExportUsesConfiguredDir(t *testing.T) {
	env := newCLIEnv(t)
	outDir := t.TempDir()
	t.Setenv("PENGINEER_EXPORT_DIR", outDir)

	_, err := env.run("export")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(outDir, "*.jsonl"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestExportSameSecond(t *testing.T) {
	env := newCLIEnv(t)
	outDir := t.TempDir()

	_, err := env.run("export", "--dir", outDir)
	require.NoError(t, err)

	// Same clock reading: the second export gets a suffixed name.
	out, err := env.run("export", "--dir", outDir)
	require.NoError(t, err)
	assert.Equal(t, "Exported 0 prompts to "+filepath.Join(outDir, "prompts-default-list-20240301T120000-1.jsonl")+"\n", out)
}
