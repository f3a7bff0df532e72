//go:build !integration

package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-ce/envlint/pkg/envconfig"
)

func TestFeedstockDirName(t *testing.T) {
	tests := []struct {
		name      string
		feedstock string
		want      string
	}{
		{"bare name gets suffix", "numpy", "numpy-feedstock"},
		{"https url uses basename", "https://github.com/example/custom-recipes.git", "custom-recipes"},
		{"url without .git", "https://github.com/example/custom-recipes", "custom-recipes"},
		{"ssh url", "git@github.com:example/thing.git", "thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeedstockDirName(envconfig.PackageSpec{Feedstock: tt.feedstock})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMissingFeedstock(t *testing.T) {
	repo := RepositoryContext{Root: t.TempDir()}
	_, err := repo.Resolve(envconfig.PackageSpec{Feedstock: "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost-feedstock")
}

func TestResolveFeedstockWithoutRecipes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-feedstock"), 0o755))

	repo := RepositoryContext{Root: root}
	_, err := repo.Resolve(envconfig.PackageSpec{Feedstock: "empty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipe configuration found")
}

func TestResolveBuildConfigRecipes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "multi-feedstock", "config", "build-config.yaml"), `
recipes:
  - name: first
    path: recipe-first
  - name: second
    path: recipe-second
`)
	writeFile(t, filepath.Join(root, "multi-feedstock", "recipe-first", "meta.yaml"), `
package:
  name: firstpkg
requirements:
  run:
    - zlib 1.2.*
    - openssl
`)

	repo := RepositoryContext{Root: root}
	feedstock, err := repo.Resolve(envconfig.PackageSpec{Feedstock: "multi"})
	require.NoError(t, err)

	require.Len(t, feedstock.Recipes, 2)
	assert.True(t, feedstock.HasRecipe("first"))
	assert.True(t, feedstock.HasRecipe("second"))
	assert.False(t, feedstock.HasRecipe("third"))

	assert.Equal(t, []string{"firstpkg"}, feedstock.Recipes[0].PackageNames)
	assert.Equal(t, []string{"zlib", "openssl"}, feedstock.Recipes[0].Requirements)

	// Recipe without a parseable meta falls back to the recipe name.
	assert.Equal(t, []string{"second"}, feedstock.Recipes[1].PackageNames)
}

func TestResolveUnparseableMetaIsOpaqueNotFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "jinja-feedstock", "recipe", "meta.yaml"),
		"{% set version = \"1.0\" %}\npackage:\n  name: {{ name }}\n")

	repo := RepositoryContext{Root: root}
	feedstock, err := repo.Resolve(envconfig.PackageSpec{Feedstock: "jinja"})
	require.NoError(t, err)
	require.Len(t, feedstock.Recipes, 1)
	assert.Empty(t, feedstock.Recipes[0].Requirements)
}

func TestRemoveVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"numpy", "numpy"},
		{"numpy 1.26.*", "numpy"},
		{"numpy=1.26", "numpy"},
		{"numpy>=1.20,<2", "numpy"},
		{"  spaced  ", "spaced"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RemoveVersion(tt.input), "input %q", tt.input)
	}
}

func TestLoadVersionPins(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "conda_build_config.yaml"), `
python:
  - 3.10
upstreamdep1:
  - 2.3
pinneddep:
  - 5.2.*
zip_keys:
  - [python, build_type]
`)

	pins, err := LoadVersionPins(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pinneddep 5.2.*", "upstreamdep1 2.3.*"}, pins)
}

func TestLoadVersionPinsMissingFile(t *testing.T) {
	_, err := LoadVersionPins(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to open provided config file")
}
