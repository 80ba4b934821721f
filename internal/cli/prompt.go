package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pengineer/internal/record"
)

// PromptOptions holds flags for the prompt subcommands.
type PromptOptions struct {
	*RootOptions
	List       string
	Prompt     string
	Completion string
	ID         string
}

// NewPromptCommand creates the prompt command group.
func NewPromptCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Add, list and remove prompts",
	}

	cmd.AddCommand(newPromptAddCommand(rootOpts))
	cmd.AddCommand(newPromptListCommand(rootOpts))
	cmd.AddCommand(newPromptRemoveCommand(rootOpts))
	return cmd
}

func newPromptAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PromptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a prompt/completion pair",
		Long: `Save a prompt/completion pair to a list.

The prompt gets a new UUIDv7 id unless --id is given. Saving an id that
already exists is rejected and exits with code 1.

Example:
  pengineer prompt add --prompt "Capital of Italy?" --completion "Rome"
  pengineer prompt add --list Geography --prompt "Capital of France?" --completion "Paris"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.List, "list", record.DefaultListName, "list to file the prompt under")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "prompt text (required)")
	cmd.Flags().StringVar(&opts.Completion, "completion", "", "completion text")
	cmd.Flags().StringVar(&opts.ID, "id", "", "prompt id (default: new UUIDv7)")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func runPromptAdd(opts *PromptOptions, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	p := record.Prompt{
		ID:         opts.ID,
		ListName:   opts.List,
		Prompt:     opts.Prompt,
		Completion: opts.Completion,
	}
	if p.ID == "" {
		p.ID = opts.ids().Generate()
	}

	conflict, err := s.store.SavePrompt(cmd.Context(), p)
	if err != nil {
		return s.failure("failed to save prompt", err)
	}
	if conflict != nil {
		return s.conflict(conflict)
	}

	return s.out.Success(p, func(w io.Writer) {
		fmt.Fprintln(w, p.ID)
	})
}

func newPromptListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PromptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show prompts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.List, "list", "", "only show prompts in this list")
	return cmd
}

func runPromptList(opts *PromptOptions, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	prompts := s.store.Prompts()
	if opts.List != "" {
		prompts = s.store.PromptsInList(opts.List)
	}

	return s.out.Success(prompts, func(w io.Writer) {
		if len(prompts) == 0 {
			fmt.Fprintln(w, "No prompts.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLIST\tPROMPT\tCOMPLETION")
		for _, p := range prompts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.ListName, oneLine(p.Prompt), oneLine(p.Completion))
		}
		tw.Flush()
	})
}

func newPromptRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a prompt by id",
		Long:    "Delete a prompt by id. Deleting an id that does not exist succeeds.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptRemove(rootOpts, args[0], cmd)
		},
	}
}

func runPromptRemove(opts *RootOptions, id string, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.DeletePrompt(cmd.Context(), id); err != nil {
		return s.failure("failed to delete prompt", err)
	}
	return s.out.Success(map[string]string{"deleted": id}, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted prompt %s\n", id)
	})
}

// oneLine collapses whitespace runs so a record fits a table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
