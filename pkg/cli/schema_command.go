package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-ce/envlint/pkg/envconfig"
)

// NewSchemaCommand creates the schema command, which prints the embedded
// env-file JSON schema. Useful for editor integration and for debugging
// schema violations.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the env-file JSON schema",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), string(envconfig.SchemaJSON()))
		},
	}
}
