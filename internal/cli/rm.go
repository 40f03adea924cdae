package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "rm <id>",
		Short:        "Remove a todo",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, rootOpts, args[0])
		},
	}
}

func runRemove(cmd *cobra.Command, opts *RootOptions, id string) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.syncer.Remove(cmd.Context(), id); err != nil {
		return WrapExitError(ExitFailure, "failed to remove todo "+id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
	warnAdvisory(cmd, sess.syncer)
	return nil
}
