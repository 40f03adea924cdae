package cli

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"
)

//go:embed export_schema.json
var exportSchemaJSON string

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add todos from an export file",
		Long: `Add todos from a JSON export file produced by "todo export".

The file is validated against the export schema before anything is
added. Entries that fail todo validation (for example whitespace-only
text) are skipped with a warning; the rest are imported.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, opts *RootOptions, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read "+path, err)
	}

	doc, err := parseExport(payload)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid export file "+path, err)
	}

	sess, err := newSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	imported := 0
	for _, entry := range doc.Todos {
		item, err := sess.syncer.Add(cmd.Context(), entry.Text)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %q: %v\n", entry.Text, err)
			continue
		}
		if entry.Completed {
			if _, err := sess.syncer.ToggleComplete(cmd.Context(), item.ID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "imported %q but could not mark it done: %v\n", entry.Text, err)
			}
		}
		imported++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d todo(s) from %s\n", imported, len(doc.Todos), path)
	warnAdvisory(cmd, sess.syncer)
	return nil
}

// parseExport validates the payload against the embedded schema and then
// decodes it.
func parseExport(payload []byte) (*exportDocument, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("export_schema.json", strings.NewReader(exportSchemaJSON)); err != nil {
		return nil, fmt.Errorf("load export schema: %w", err)
	}
	schema, err := compiler.Compile("export_schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile export schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, err
	}

	var doc exportDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
