package cli

import (
	"time"

	"github.com/spf13/cobra"

	"todosync/internal/remote"
	"todosync/internal/tui"
)

const tuiProbeInterval = 5 * time.Second

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "tui",
		Short:        "Open the interactive terminal UI",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, rootOpts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *RootOptions) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	// Background probes keep the offline badge honest while the UI is up.
	if !sess.cfg.Offline {
		monitor := remote.NewMonitor(sess.cfg.ServerURL, sess.syncer, tuiProbeInterval, sess.logger)
		monitor.Start()
		defer monitor.Stop()
	}

	if err := tui.Run(cmd.Context(), sess.syncer); err != nil {
		return WrapExitError(ExitFailure, "terminal UI failed", err)
	}
	return nil
}
