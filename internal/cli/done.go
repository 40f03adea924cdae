package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "done <id>",
		Short:        "Toggle a todo's completion state",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDone(cmd, rootOpts, args[0])
		},
	}
}

func runDone(cmd *cobra.Command, opts *RootOptions, id string) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	item, err := sess.syncer.ToggleComplete(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to toggle todo "+id, err)
	}

	verb := "reopened"
	if item.Completed {
		verb = "completed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", checkbox(item.Completed), verb, item.Text)

	warnAdvisory(cmd, sess.syncer)
	return nil
}
