package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pengineer/internal/testutil"
)

// cliEnv runs commands against an isolated data dir with deterministic ids
// and a fixed clock.
type cliEnv struct {
	t       *testing.T
	dataDir string
	ids     *testutil.SequentialIDs
	clock   *testutil.FixedClock
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_DATA_HOME", home)

	return &cliEnv{
		t:       t,
		dataDir: t.TempDir(),
		ids:     testutil.NewSequentialIDs("prompt"),
		clock:   testutil.NewFixedClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
}

// run executes the root command with args and returns stdout and the error.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	opts := &RootOptions{IDs: e.ids, Now: e.clock.Now}
	cmd := newRootCommand(opts)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--data-dir", e.dataDir}, args...))

	err := cmd.Execute()
	return out.String(), err
}

// runJSON executes a command with --format json and decodes the envelope.
func (e *cliEnv) runJSON(args ...string) (CLIResponse, error) {
	e.t.Helper()
	out, err := e.run(append([]string{"--format", "json"}, args...)...)

	var resp CLIResponse
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}
