package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-ce/envlint/pkg/constants"
	"github.com/open-ce/envlint/pkg/envconfig"
	"github.com/open-ce/envlint/pkg/logger"
	"github.com/open-ce/envlint/pkg/validation"
)

var validateLog = logger.New("cli:validate_command")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <env-file>...",
		Short: "Validate env files against build types and a repository folder",
		Long: `Validate one or more env files. Every file is parsed, schema-checked, and
cross-checked: each declared package must be consistent with at least one
requested build type and must resolve to a feedstock checkout under the
repository folder. Imported env files are followed and checked too.

All violations across all documents are collected and reported together.
The command is silent on success and exits non-zero when any violation is
found. Flag spellings follow the historical tool, so existing CI
invocations keep working unchanged.

Examples:
  ` + constants.CLIName + ` validate envs/opence-env.yaml --build_types cuda,cpu --repository_folder ./repos
  ` + constants.CLIName + ` validate envs/*.yaml --build_types cpu --repository_folder ./repos --json
  ` + constants.CLIName + ` validate envs/opence-env.yaml --build_types cuda --repository_folder ./repos --dry_run
  ` + constants.CLIName + ` validate envs/opence-env.yaml --build_types cpu --repository_folder ./repos --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			buildTypesValue, _ := cmd.Flags().GetString("build_types")
			repositoryFolder, _ := cmd.Flags().GetString("repository_folder")
			pythonVersions, _ := cmd.Flags().GetString("python_versions")
			mpiTypes, _ := cmd.Flags().GetString("mpi_types")
			condaBuildConfig, _ := cmd.Flags().GetString("conda_build_config")
			failFast, _ := cmd.Flags().GetBool("fail_fast")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			dryRun, _ := cmd.Flags().GetBool("dry_run")
			watch, _ := cmd.Flags().GetBool("watch")

			if len(args) == 0 {
				return fmt.Errorf("at least one env file is required")
			}

			buildTypes, err := envconfig.ParseBuildTypes(buildTypesValue)
			if err != nil {
				return err
			}

			validator, err := validation.New(validation.Options{
				BuildTypes:       buildTypes,
				PythonVersions:   envconfig.ParseList(pythonVersions),
				MPITypes:         envconfig.ParseList(mpiTypes),
				RepositoryFolder: repositoryFolder,
				CondaBuildConfig: condaBuildConfig,
				FailFast:         failFast,
				DryRun:           dryRun,
			})
			if err != nil {
				return err
			}

			validateLog.Printf("Running validate command: files=%v, build_types=%s, repository_folder=%s",
				args, buildTypesValue, repositoryFolder)

			if watch {
				return watchAndValidate(cmd.Context(), validator, args, jsonOutput)
			}

			report, err := validator.Validate(cmd.Context(), args)
			if err != nil {
				return err
			}
			return ReportResult(cmd, report, jsonOutput)
		},
	}

	cmd.Flags().String("build_types", "", "Comma-separated build types to validate against, e.g. cuda,cpu")
	cmd.Flags().String("repository_folder", "", "Folder containing feedstock checkouts")
	cmd.Flags().String("python_versions", constants.DefaultPythonVersion, "Comma-separated python versions for variant expansion")
	cmd.Flags().String("mpi_types", constants.DefaultMPIType, "Comma-separated MPI types for variant expansion")
	cmd.Flags().String("conda_build_config", "", "Conda build config whose version pins feed the --dry_run solver check")
	cmd.Flags().Bool("fail_fast", false, "Stop at the first violation instead of collecting all violations")
	cmd.Flags().BoolP("json", "j", false, "Output the violation report in JSON format")
	cmd.Flags().Bool("dry_run", false, "Run `conda create --dry-run` per variant after static checks pass")
	cmd.Flags().Bool("watch", false, "Re-run validation whenever an env file changes")

	return cmd
}
