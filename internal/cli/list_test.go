package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDefaultExists(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("list", "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"Default", "List", "0"}, strings.Fields(lines[1]))
}

func TestListAddShowRemove(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("list", "add", "Geography")
	require.NoError(t, err)
	assert.Equal(t, "Created list Geography\n", out)

	_, err = env.run("prompt", "add", "--list", "Geography", "--prompt", "Capital of Peru?", "--completion", "Lima")
	require.NoError(t, err)

	resp, err := env.runJSON("list", "ls")
	require.NoError(t, err)
	summaries, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, summaries, 2)
	assert.Equal(t, map[string]any{"name": "Default List", "prompts": float64(0)}, summaries[0])
	assert.Equal(t, map[string]any{"name": "Geography", "prompts": float64(1)}, summaries[1])

	out, err = env.run("list", "rm", "Geography")
	require.NoError(t, err)
	assert.Equal(t, "Deleted list Geography\n", out)

	out, err = env.run("list", "ls")
	require.NoError(t, err)
	assert.NotContains(t, out, "Geography")

	// The prompt outlives its list.
	out, err = env.run("prompt", "ls", "--list", "Geography")
	require.NoError(t, err)
	assert.Contains(t, out, "Capital of Peru?")
}

func TestListAddDuplicate(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("list", "add", "Default List")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [CONFLICT]: a list with that name already exists (Default List)\n", out)
}

func TestListAddEmptyName(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := env.runJSON("list", "add", "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalid, resp.Error.Code)
	assert.Equal(t, "invalid list: name must not be empty", resp.Error.Message)
}
