package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pengineer/internal/export"
	"github.com/roach88/pengineer/internal/record"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	List string
	Dir  string
}

// ExportResult describes a written export file.
type ExportResult struct {
	Path    string `json:"path"`
	List    string `json:"list"`
	Prompts int    `json:"prompts"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a list as JSONL training data",
		Long: `Write every prompt in a list to a new JSONL file, one
{"prompt": ..., "completion": ...} object per line.

The file is named prompts-<list>-<timestamp>.jsonl and is written to
--dir, or export_dir from the config.

Example:
  pengineer export
  pengineer export --list Geography --dir ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.List, "list", record.DefaultListName, "list to export")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "output directory (overrides export_dir)")
	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dir := opts.Dir
	if dir == "" {
		dir = s.cfg.ExportDir
	}

	prompts := s.store.PromptsInList(opts.List)
	path, err := export.ToFile(dir, opts.List, opts.now(), prompts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to export", err)
	}
	s.logger.Debug("exported prompts", "path", path, "count", len(prompts))

	result := ExportResult{Path: path, List: opts.List, Prompts: len(prompts)}
	return s.out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "Exported %d prompts to %s\n", result.Prompts, result.Path)
	})
}
