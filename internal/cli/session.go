package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pengineer/internal/config"
	"github.com/roach88/pengineer/internal/record"
	"github.com/roach88/pengineer/internal/store"
)

// session is an initialized store plus everything a command needs around it.
type session struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	out    *OutputFormatter
}

func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create data dir", err)
	}

	path := store.PathIn(cfg.DataDir)
	logger.Debug("opening store", "path", path)
	st := store.New(path, store.WithLogger(logger))
	if err := st.Initialize(ctx); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to open store at %s", path), err)
	}

	st.Subscribe(func() {
		logger.Debug("store changed", "prompts", len(st.Prompts()), "lists", len(st.Lists()))
	})

	return &session{
		cfg:    cfg,
		store:  st,
		logger: logger,
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
}

// conflict reports a rejected save and returns the matching exit error.
func (s *session) conflict(c *store.Conflict) error {
	if err := s.out.Error(CodeConflict, c.Message, c.Key); err != nil {
		return err
	}
	return NewExitError(ExitFailure, c.Message)
}

// failure reports a store error and returns it with an exit code.
func (s *session) failure(message string, err error) error {
	code := CodeStorage
	var ve *record.ValidationError
	if errors.As(err, &ve) {
		code = CodeInvalid
	}
	if outErr := s.out.Error(code, err.Error(), ""); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, message, err)
}
