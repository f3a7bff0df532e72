// Package envconfig loads and structurally validates build-environment
// definition files.
//
// An env file is a YAML document declaring the package feedstocks of one
// build environment, the channels they are pulled from, other env files to
// import, and external dependencies that are installed rather than built.
// Every file is validated against an embedded JSON schema before its content
// is trusted.
package envconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/open-ce/envlint/pkg/logger"
)

var loadLog = logger.New("envconfig:load")

// PackageSpec is one entry of an env file's packages list. Feedstock is
// either a bare package name (resolved as "<name>-feedstock" under the
// repository folder) or a git URL. An empty BuildTypes list means the
// package participates in every build type.
type PackageSpec struct {
	Feedstock  string      `yaml:"feedstock"`
	GitTag     string      `yaml:"git_tag,omitempty"`
	Recipes    []string    `yaml:"recipes,omitempty"`
	Channels   []string    `yaml:"channels,omitempty"`
	BuildTypes []BuildType `yaml:"build_types,omitempty"`
}

// SupportsBuildType reports whether the package participates in the given
// build type. Packages without an explicit build_types restriction
// participate in all of them.
func (p PackageSpec) SupportsBuildType(bt BuildType) bool {
	if len(p.BuildTypes) == 0 {
		return true
	}
	return slices.Contains(p.BuildTypes, bt)
}

// Document is a parsed env file. Documents are read-only: they are loaded
// once per run and never mutated.
type Document struct {
	Path                 string        `yaml:"-"`
	Packages             []PackageSpec `yaml:"packages,omitempty"`
	Channels             []string      `yaml:"channels,omitempty"`
	ImportedEnvs         []string      `yaml:"imported_envs,omitempty"`
	ExternalDependencies []string      `yaml:"external_dependencies,omitempty"`
	GitTagForEnv         string        `yaml:"git_tag_for_env,omitempty"`
}

// Load reads, schema-validates, and parses a single env file. Import
// references are left unresolved; use LoadWithImports to follow them.
func Load(path string) (*Document, error) {
	loadLog.Printf("Loading env file: %s", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open env file %s: %w", path, err)
	}

	jsonDoc, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := validateWithSchema(jsonDoc, path); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc.Path = path

	loadLog.Printf("Loaded %s: packages=%d, imports=%d", path, len(doc.Packages), len(doc.ImportedEnvs))
	return &doc, nil
}

// LoadWithImports loads an env file and, depth-first, every env file it
// imports. Imports are resolved relative to the importing file's directory.
// Files reached through more than one import path are loaded once; a cyclic
// import chain is an error naming the full chain.
func LoadWithImports(path string) ([]*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve env file path %s: %w", path, err)
	}
	loaded := make(map[string]bool)
	return loadRecursive(abs, loaded, nil)
}

func loadRecursive(path string, loaded map[string]bool, chain []string) ([]*Document, error) {
	if slices.Contains(chain, path) {
		cycle := append(slices.Clone(chain), path)
		return nil, fmt.Errorf("import cycle detected: %s", strings.Join(cycle, " -> "))
	}
	if loaded[path] {
		return nil, nil
	}
	loaded[path] = true

	doc, err := Load(path)
	if err != nil {
		return nil, err
	}

	docs := []*Document{doc}
	chain = append(chain, path)
	for _, imported := range doc.ImportedEnvs {
		importPath := imported
		if !filepath.IsAbs(importPath) {
			importPath = filepath.Join(filepath.Dir(path), importPath)
		}
		importPath = filepath.Clean(importPath)

		importedDocs, err := loadRecursive(importPath, loaded, chain)
		if err != nil {
			return nil, err
		}
		docs = append(docs, importedDocs...)
	}
	return docs, nil
}
