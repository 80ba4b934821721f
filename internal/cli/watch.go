package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/pengineer/internal/store"
)

// settleDelay batches the burst of WAL writes a single commit produces.
const settleDelay = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print store totals whenever the database changes",
		Long: `Watch the data directory and reload the store whenever another
pengineer process writes to it, printing prompt and list totals.

Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, cmd)
		},
	}
}

func runWatch(opts *RootOptions, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.cfg.DataDir); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch data dir", err)
	}

	printTotals := func() {
		fmt.Fprintf(cmd.OutOrStdout(), "prompts=%d lists=%d\n", len(s.store.Prompts()), len(s.store.Lists()))
	}
	printTotals()

	return watchLoop(ctx, watcher, s.store, func(err error) {
		if err != nil {
			s.logger.Warn("reload failed", "error", err)
			return
		}
		printTotals()
	})
}

// watchLoop reloads st after database file events settle and reports each
// reload to onReload. It returns nil when ctx is done.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, st *store.Store, onReload func(error)) error {
	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if isDatabaseEvent(event) {
				timer.Reset(settleDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return WrapExitError(ExitCommandError, "watcher failed", err)
		case <-timer.C:
			onReload(st.Reload(ctx))
		}
	}
}

// isDatabaseEvent reports whether event touches prompts.db or its WAL files.
func isDatabaseEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), store.DatabaseFile)
}
