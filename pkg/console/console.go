// Package console provides styled message formatting for CLI output.
//
// Validation logic produces plain-text errors; this package is the
// presentation layer that wraps them for terminals. Styling degrades to
// plain text automatically when the output is not a TTY, so reports stay
// grep-able in CI logs.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/open-ce/envlint/pkg/tty"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
)

// styled applies a lipgloss style only when stderr is a terminal.
func styled(style lipgloss.Style, message string) string {
	if !tty.IsStderrTerminal() {
		return message
	}
	return style.Render(message)
}

// FormatErrorMessage formats an error message for console output.
// Multi-line structured errors keep their structure; styling is applied
// to the whole block.
func FormatErrorMessage(message string) string {
	return styled(errorStyle, "✗ "+message)
}

// FormatWarningMessage formats a warning message for console output.
func FormatWarningMessage(message string) string {
	return styled(warningStyle, "⚠ "+message)
}

// FormatSuccessMessage formats a success message for console output.
func FormatSuccessMessage(message string) string {
	return styled(successStyle, "✓ "+message)
}

// FormatInfoMessage formats an informational message for console output.
func FormatInfoMessage(message string) string {
	return styled(infoStyle, message)
}

// FormatLocationMessage formats a file path reference for console output.
func FormatLocationMessage(path string) string {
	return styled(pathStyle, path)
}

// FormatList renders items as an indented bullet list under a header.
func FormatList(header string, items []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, item := range items {
		fmt.Fprintf(&sb, "\n  • %s", item)
	}
	return sb.String()
}
