package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-ce/envlint/pkg/console"
	"github.com/open-ce/envlint/pkg/validation"
)

// ReportResult prints a validation report and converts it into the
// command's exit status: nil for a clean report, an error when violations
// were found.
//
// Validation errors stay plain text inside pkg/validation; this is the
// presentation layer that applies console styling. Human-readable reports
// go to stderr so stdout stays reserved for machine-readable output.
func ReportResult(cmd *cobra.Command, report *validation.Report, jsonOutput bool) error {
	if err := PrintReport(cmd, report, jsonOutput); err != nil {
		return err
	}
	if report.HasViolations() {
		return fmt.Errorf("validation failed with %d violation(s)", report.Len())
	}
	return nil
}

// PrintReport writes the report without affecting the exit status. In JSON
// mode the report is always written, even when empty, so callers get a
// stable shape. In console mode a clean report prints nothing.
func PrintReport(cmd *cobra.Command, report *validation.Report, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if !report.HasViolations() {
		return nil
	}

	header := fmt.Sprintf("Found %d validation violation(s):", report.Len())
	fmt.Fprintln(os.Stderr, console.FormatErrorMessage(console.FormatList(header, report.Messages())))
	return nil
}
