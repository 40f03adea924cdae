package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "clear",
		Short:        "Remove all completed todos",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, rootOpts)
		},
	}
}

func runClear(cmd *cobra.Command, opts *RootOptions) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	removed, err := sess.syncer.RemoveCompleted(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to clear completed todos", err)
	}

	switch removed {
	case 0:
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clear.")
	case 1:
		fmt.Fprintln(cmd.OutOrStdout(), "Removed 1 completed todo")
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d completed todos\n", removed)
	}

	warnAdvisory(cmd, sess.syncer)
	return nil
}
