// Package constants defines shared constants for the envlint tool.
package constants

// CLIName is the binary name shown in help text and examples.
const CLIName = "envlint"

// FeedstockSuffix is appended to a package name to form its feedstock
// checkout directory, e.g. "numpy" -> "numpy-feedstock".
const FeedstockSuffix = "-feedstock"

// BuildConfigFile is the per-feedstock recipe configuration file, relative
// to the feedstock root.
const BuildConfigFile = "config/build-config.yaml"

// RecipeMetaFile is the default conda recipe metadata file, relative to the
// feedstock root, used when no build config is present.
const RecipeMetaFile = "recipe/meta.yaml"

// DefaultPythonVersion is assumed when --python_versions is not given.
const DefaultPythonVersion = "3.11"

// DefaultMPIType is assumed when no MPI axis is requested.
const DefaultMPIType = "openmpi"

// SupportedGitProtocols are the URL prefixes that mark a feedstock value as
// a git URL rather than a bare package name.
var SupportedGitProtocols = []string{"https://", "http://", "git@", "ssh://"}
