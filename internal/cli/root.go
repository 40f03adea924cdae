// Package cli implements the todo command line client.
package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Server  string
	Cache   string
	Offline bool
	Verbose bool
}

// NewRootCommand creates the root command for the todo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Todo list client that keeps working offline",
		Long: `Manage a todo list backed by the todosync server.

Every command works without a connection: changes land in the local
cache immediately and a note is printed until the server has them too.
The cache lives under the XDG data directory unless --cache says
otherwise.`,
		// The entrypoint prints errors once, with the exit code applied.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Server != "" {
				u, err := url.Parse(opts.Server)
				if err != nil || u.Scheme == "" || u.Host == "" {
					return NewExitError(ExitCommandError,
						fmt.Sprintf("invalid server URL %q: expected http(s)://host[:port]", opts.Server))
				}
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "server base URL (overrides the config file)")
	cmd.PersistentFlags().StringVar(&opts.Cache, "cache", "", "path to the local cache database")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "skip the server and work from the local cache")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewDoneCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}
