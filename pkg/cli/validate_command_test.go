//go:build !integration

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewValidateCommand tests that the validate command is created correctly
func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	require.NotNil(t, cmd, "NewValidateCommand should return a non-nil command")
	assert.Equal(t, "validate", cmd.Name(), "Command name should be 'validate'")
	assert.NotEmpty(t, cmd.Short, "Command should have a short description")
	assert.NotEmpty(t, cmd.Long, "Command should have a long description")

	// Verify key flags exist
	require.NotNil(t, cmd.Flags().Lookup("build_types"), "validate command should have a --build_types flag")
	require.NotNil(t, cmd.Flags().Lookup("repository_folder"), "validate command should have a --repository_folder flag")
	require.NotNil(t, cmd.Flags().Lookup("python_versions"), "validate command should have a --python_versions flag")
	require.NotNil(t, cmd.Flags().Lookup("conda_build_config"), "validate command should have a --conda_build_config flag")
	require.NotNil(t, cmd.Flags().Lookup("fail_fast"), "validate command should have a --fail_fast flag")
	require.NotNil(t, cmd.Flags().Lookup("json"), "validate command should have a --json flag")
	assert.Equal(t, "j", cmd.Flags().Lookup("json").Shorthand, "--json flag should have -j shorthand")
	require.NotNil(t, cmd.Flags().Lookup("dry_run"), "validate command should have a --dry_run flag")
	require.NotNil(t, cmd.Flags().Lookup("watch"), "validate command should have a --watch flag")
}

func writeFixture(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newFixtureRepo creates a repository folder with one resolvable feedstock.
func newFixtureRepo(t *testing.T, pkg string) string {
	t.Helper()
	repo := t.TempDir()
	writeFixture(t, filepath.Join(repo, pkg+"-feedstock", "recipe", "meta.yaml"),
		"package:\n  name: "+pkg+"\n")
	return repo
}

// runValidate executes the validate command with the given args, capturing
// stdout.
func runValidate(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewValidateCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommandUsageErrors(t *testing.T) {
	repo := newFixtureRepo(t, "numpy")
	env := writeFixture(t, filepath.Join(t.TempDir(), "env.yaml"), "packages:\n  - feedstock: numpy\n")

	t.Run("no env files", func(t *testing.T) {
		_, err := runValidate(t, "--build_types", "cpu", "--repository_folder", repo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one env file")
	})

	t.Run("empty build types", func(t *testing.T) {
		_, err := runValidate(t, env, "--repository_folder", repo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one build type")
	})

	t.Run("missing repository folder", func(t *testing.T) {
		_, err := runValidate(t, env, "--build_types", "cpu")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "repository folder")
	})
}

func TestValidateCommandSucceedsSilently(t *testing.T) {
	repo := newFixtureRepo(t, "numpy")
	env := writeFixture(t, filepath.Join(t.TempDir(), "env.yaml"), "packages:\n  - feedstock: numpy\n")

	out, err := runValidate(t, env, "--build_types", "cuda,cpu", "--repository_folder", repo)
	require.NoError(t, err)
	assert.Empty(t, out, "a clean validation run should print nothing")
}

func TestValidateCommandFailsWithViolations(t *testing.T) {
	repo := newFixtureRepo(t, "numpy")
	env := writeFixture(t, filepath.Join(t.TempDir(), "env.yaml"),
		"packages:\n  - feedstock: numpy\n  - feedstock: ghost\n")

	_, err := runValidate(t, env, "--build_types", "cpu", "--repository_folder", repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed with 1 violation(s)")
}

func TestValidateCommandJSONOutput(t *testing.T) {
	repo := newFixtureRepo(t, "numpy")
	env := writeFixture(t, filepath.Join(t.TempDir(), "env.yaml"),
		"packages:\n  - feedstock: ghost\n")

	out, err := runValidate(t, env, "--json", "--build_types", "cpu", "--repository_folder", repo)
	require.Error(t, err)

	var report struct {
		Violations []struct {
			Document string `json:"document"`
			Entry    string `json:"entry"`
			Reason   string `json:"reason"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "ghost", report.Violations[0].Entry)
	assert.Contains(t, report.Violations[0].Document, "env.yaml")
}

func TestValidateCommandJSONOutputEmptyReport(t *testing.T) {
	repo := newFixtureRepo(t, "numpy")
	env := writeFixture(t, filepath.Join(t.TempDir(), "env.yaml"), "packages:\n  - feedstock: numpy\n")

	out, err := runValidate(t, env, "--json", "--build_types", "cpu", "--repository_folder", repo)
	require.NoError(t, err)
	assert.JSONEq(t, `{"violations":[]}`, out)
}

func TestSchemaCommandPrintsSchema(t *testing.T) {
	cmd := NewSchemaCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Environment configuration file")
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "envlint 1.2.3\n", out.String())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand("dev")
	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["validate"])
	assert.True(t, names["schema"])
	assert.True(t, names["version"])
}
