package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todosync/internal/domain/todo"
)

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:          "edit <id> --text <new text>",
		Short:        "Change a todo's text",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, rootOpts, args[0], text)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "the new text (required)")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func runEdit(cmd *cobra.Command, opts *RootOptions, id, text string) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	item, err := sess.syncer.Update(cmd.Context(), id, todo.Patch{Text: &text})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to edit todo "+id, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatItem(item))
	warnAdvisory(cmd, sess.syncer)
	return nil
}
