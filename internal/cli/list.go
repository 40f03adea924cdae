package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List all todos",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts)
		},
	}
}

func runList(cmd *cobra.Command, opts *RootOptions) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	items := sess.syncer.Items()
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No todos.")
	}
	for _, item := range items {
		fmt.Fprintln(cmd.OutOrStdout(), formatItem(item))
	}

	warnAdvisory(cmd, sess.syncer)
	return nil
}
