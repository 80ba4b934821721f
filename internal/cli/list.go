package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pengineer/internal/record"
)

// ListSummary is a list with the number of prompts filed under it.
type ListSummary struct {
	Name    string `json:"name"`
	Prompts int    `json:"prompts"`
}

// NewListCommand creates the list command group.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Add, show and remove lists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListAdd(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "Show lists with their prompt counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListShow(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a list",
		Long: `Delete a list by name.

Prompts filed under the list are kept and still show up in "prompt ls".
Deleting a list that does not exist succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListRemove(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func runListAdd(opts *RootOptions, name string, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	l := record.List{Name: name}
	conflict, err := s.store.SaveList(cmd.Context(), l)
	if err != nil {
		return s.failure("failed to save list", err)
	}
	if conflict != nil {
		return s.conflict(conflict)
	}

	return s.out.Success(l, func(w io.Writer) {
		fmt.Fprintf(w, "Created list %s\n", name)
	})
}

func runListShow(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	counts := make(map[string]int)
	for _, p := range s.store.Prompts() {
		counts[p.ListName]++
	}

	lists := s.store.Lists()
	summaries := make([]ListSummary, len(lists))
	for i, l := range lists {
		summaries[i] = ListSummary{Name: l.Name, Prompts: counts[l.Name]}
	}

	return s.out.Success(summaries, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPROMPTS")
		for _, sum := range summaries {
			fmt.Fprintf(tw, "%s\t%d\n", sum.Name, sum.Prompts)
		}
		tw.Flush()
	})
}

func runListRemove(opts *RootOptions, name string, cmd *cobra.Command) error {
	s, err := openSession(cmd.Context(), opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.DeleteList(cmd.Context(), name); err != nil {
		return s.failure("failed to delete list", err)
	}
	return s.out.Success(map[string]string{"deleted": name}, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted list %s\n", name)
	})
}
