package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a new todo",
		Long: `Add a new todo with the given text.

Multiple arguments are joined with spaces, so quoting is optional:
  todo add buy milk
  todo add "call the dentist"`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, rootOpts, strings.Join(args, " "))
		},
	}
}

func runAdd(cmd *cobra.Command, opts *RootOptions, text string) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	item, err := sess.syncer.Add(cmd.Context(), text)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to add todo", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatItem(item))
	warnAdvisory(cmd, sess.syncer)
	return nil
}
