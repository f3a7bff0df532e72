package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/open-ce/envlint/pkg/constants"
	"github.com/open-ce/envlint/pkg/envconfig"
	"github.com/open-ce/envlint/pkg/fileutil"
	"github.com/open-ce/envlint/pkg/logger"
)

var feedstockLog = logger.New("validation:feedstock")

// RepositoryContext is the filesystem root under which feedstock checkouts
// are resolved. A package spec with feedstock "numpy" resolves to
// "<root>/numpy-feedstock"; git URLs resolve by their repository basename.
type RepositoryContext struct {
	Root string
}

// Recipe is one buildable recipe inside a feedstock.
type Recipe struct {
	Name string
	Path string

	// PackageNames are the output packages the recipe produces.
	PackageNames []string

	// Requirements are the build/host/run dependency names (versions
	// stripped) declared by the recipe, used for cycle detection.
	Requirements []string
}

// Feedstock is a resolved feedstock checkout with its recipe inventory.
type Feedstock struct {
	Name    string
	Dir     string
	Recipes []Recipe
}

// FeedstockDirName returns the directory name a package spec resolves to.
// A bare name gets the "-feedstock" suffix; a git URL resolves to its
// repository basename.
func FeedstockDirName(spec envconfig.PackageSpec) string {
	value := spec.Feedstock
	for _, protocol := range constants.SupportedGitProtocols {
		if strings.HasPrefix(value, protocol) {
			base := filepath.Base(value)
			return strings.TrimSuffix(base, ".git")
		}
	}
	return value + constants.FeedstockSuffix
}

// Resolve locates the feedstock checkout for a package spec and loads its
// recipe inventory. It is an error if the directory does not exist or
// contains no recipe configuration.
func (r RepositoryContext) Resolve(spec envconfig.PackageSpec) (*Feedstock, error) {
	dirName := FeedstockDirName(spec)
	dir := filepath.Join(r.Root, dirName)
	feedstockLog.Printf("Resolving feedstock %s at %s", spec.Feedstock, dir)

	if !fileutil.DirExists(dir) {
		return nil, fmt.Errorf("feedstock %s not found under %s (expected directory %s)", spec.Feedstock, r.Root, dirName)
	}

	recipes, err := loadRecipes(dir)
	if err != nil {
		return nil, err
	}

	return &Feedstock{Name: dirName, Dir: dir, Recipes: recipes}, nil
}

// HasRecipe reports whether the feedstock contains a recipe with the given
// name.
func (f *Feedstock) HasRecipe(name string) bool {
	for _, recipe := range f.Recipes {
		if recipe.Name == name {
			return true
		}
	}
	return false
}

// buildConfig mirrors the feedstock's config/build-config.yaml.
type buildConfig struct {
	Recipes []struct {
		Name string `yaml:"name"`
		Path string `yaml:"path"`
	} `yaml:"recipes"`
}

// loadRecipes reads the feedstock's recipe inventory: config/build-config.yaml
// when present, otherwise the default recipe/meta.yaml.
func loadRecipes(dir string) ([]Recipe, error) {
	configPath := filepath.Join(dir, constants.BuildConfigFile)
	if fileutil.FileExists(configPath) {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read %s: %w", configPath, err)
		}
		var config buildConfig
		if err := yaml.Unmarshal(content, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
		if len(config.Recipes) == 0 {
			return nil, fmt.Errorf("no recipes declared in %s", configPath)
		}

		recipes := make([]Recipe, 0, len(config.Recipes))
		for _, entry := range config.Recipes {
			recipe := Recipe{Name: entry.Name, Path: entry.Path}
			meta := loadRecipeMeta(filepath.Join(dir, entry.Path, "meta.yaml"))
			recipe.PackageNames = meta.packages
			recipe.Requirements = meta.requirements
			if len(recipe.PackageNames) == 0 {
				recipe.PackageNames = []string{entry.Name}
			}
			recipes = append(recipes, recipe)
		}
		return recipes, nil
	}

	metaPath := filepath.Join(dir, constants.RecipeMetaFile)
	if fileutil.FileExists(metaPath) {
		meta := loadRecipeMeta(metaPath)
		name := filepath.Base(dir)
		if len(meta.packages) > 0 {
			name = meta.packages[0]
		}
		return []Recipe{{
			Name:         name,
			Path:         filepath.Dir(constants.RecipeMetaFile),
			PackageNames: append([]string{}, meta.packages...),
			Requirements: meta.requirements,
		}}, nil
	}

	return nil, fmt.Errorf("no recipe configuration found in %s (expected %s or %s)", dir, constants.BuildConfigFile, constants.RecipeMetaFile)
}

type recipeMeta struct {
	packages     []string
	requirements []string
}

// loadRecipeMeta extracts package names and dependency names from a conda
// meta.yaml. Upstream recipes frequently embed Jinja templating that is not
// parseable YAML; such recipes are treated as present but opaque, with no
// dependency edges.
func loadRecipeMeta(path string) recipeMeta {
	content, err := os.ReadFile(path)
	if err != nil {
		return recipeMeta{}
	}

	var meta struct {
		Package struct {
			Name string `yaml:"name"`
		} `yaml:"package"`
		Requirements struct {
			Build []string `yaml:"build"`
			Host  []string `yaml:"host"`
			Run   []string `yaml:"run"`
		} `yaml:"requirements"`
		Outputs []struct {
			Name string `yaml:"name"`
		} `yaml:"outputs"`
	}
	if err := yaml.Unmarshal(content, &meta); err != nil {
		feedstockLog.Printf("Skipping unparseable recipe meta %s: %v", path, err)
		return recipeMeta{}
	}

	var result recipeMeta
	if meta.Package.Name != "" {
		result.packages = append(result.packages, meta.Package.Name)
	}
	for _, output := range meta.Outputs {
		if output.Name != "" {
			result.packages = append(result.packages, output.Name)
		}
	}

	seen := make(map[string]bool)
	for _, deps := range [][]string{meta.Requirements.Build, meta.Requirements.Host, meta.Requirements.Run} {
		for _, dep := range deps {
			name := RemoveVersion(dep)
			if name != "" && !seen[name] {
				seen[name] = true
				result.requirements = append(result.requirements, name)
			}
		}
	}
	return result
}

// RemoveVersion strips version constraints from a dependency spec, e.g.
// "numpy 1.26.*" and "numpy=1.26" both yield "numpy".
func RemoveVersion(dep string) string {
	name := strings.TrimSpace(dep)
	if i := strings.IndexAny(name, " =<>!"); i >= 0 {
		name = name[:i]
	}
	return name
}
