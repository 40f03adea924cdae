package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todosync/internal/domain/todo"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // operation failed (validation, unknown id, server rejection)
	ExitCommandError = 2 // command error (bad flags, unreadable files, broken cache)
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Returns ExitFailure
// when the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func checkbox(done bool) string {
	if done {
		return successStyle.Render(boxChecked)
	}
	return mutedStyle.Render(boxUnchecked)
}

// formatItem renders one todo as a single line: checkbox, id, text.
func formatItem(item todo.Item) string {
	return fmt.Sprintf("%s %s  %s", checkbox(item.Completed), item.ID, item.Text)
}

// progressBar renders completion as a fixed-width bar, plain text so the
// output stays stable across terminals.
func progressBar(done, total, width int) string {
	if width <= 0 {
		width = 28
	}
	filled := 0
	if total > 0 {
		filled = int(float64(done) / float64(total) * float64(width))
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// renderStats produces the stats block. Plain text only: no styling, so
// the exact bytes are predictable.
func renderStats(stats todo.Stats, online bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total    %d\n", stats.Total)
	fmt.Fprintf(&b, "Done     %d\n", stats.Completed)
	fmt.Fprintf(&b, "Pending  %d\n", stats.Pending)
	b.WriteString(progressBar(stats.Completed, stats.Total, 28))
	b.WriteString("\n")
	if !online {
		b.WriteString("(offline: counts reflect the local cache)\n")
	}
	return b.String()
}
