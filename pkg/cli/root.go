// Package cli wires the envlint commands together.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-ce/envlint/pkg/constants"
)

// NewRootCommand creates the envlint root command with all subcommands
// registered.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.CLIName,
		Short: "Validate build-environment definition files",
		Long: `envlint validates build-environment definition files: YAML documents that
declare the package feedstocks of one build environment, the channels they
are pulled from, other env files to import, and external dependencies.

Every declared entry is cross-checked against the requested build types and
a repository folder of feedstock checkouts. All violations are collected and
reported together; the exit code is zero only when every document is valid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewSchemaCommand())
	rootCmd.AddCommand(NewVersionCommand(version))

	return rootCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the envlint version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.CLIName, version)
		},
	}
}
