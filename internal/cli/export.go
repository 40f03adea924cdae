package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"todosync/internal/domain/todo"
	"todosync/pkg/api"
)

// exportVersion is bumped when the export file format changes shape.
const exportVersion = 1

// exportDocument is the on-disk export format. Todos use the wire form so
// an export file round-trips through import without losing the legacy id.
type exportDocument struct {
	Version    int                `json:"version"`
	ExportedAt string             `json:"exportedAt"`
	Todos      []api.TodoDocument `json:"todos"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "export <file>",
		Short:        "Write all todos to a JSON file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, args[0])
		},
	}
}

func runExport(cmd *cobra.Command, opts *RootOptions, path string) error {
	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	items := sess.syncer.Items()
	doc := exportDocument{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Todos:      todo.ToDocuments(items),
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode export", err)
	}
	payload = append(payload, '\n')

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write "+path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d todo(s) to %s\n", len(items), path)
	warnAdvisory(cmd, sess.syncer)
	return nil
}
