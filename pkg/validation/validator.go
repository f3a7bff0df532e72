// Package validation cross-checks env files against the requested build
// variants and a repository folder of feedstock checkouts.
//
// Validation is a single-pass batch check: every document is parsed, every
// declared entry is verified, and all violations are reported together.
// Documents are independent, so per-document checks fan out across a worker
// pool; the report order is deterministic regardless of completion order.
package validation

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/open-ce/envlint/pkg/envconfig"
	"github.com/open-ce/envlint/pkg/fileutil"
	"github.com/open-ce/envlint/pkg/logger"
)

var validatorLog = logger.New("validation:validator")

// Options configures a Validator.
type Options struct {
	// BuildTypes are the requested build type axis values. Required.
	BuildTypes []envconfig.BuildType

	// PythonVersions and MPITypes are additional variant axes, used for
	// variant labeling and the solver check. Optional.
	PythonVersions []string
	MPITypes       []string

	// RepositoryFolder is the root under which feedstock checkouts are
	// resolved. Required.
	RepositoryFolder string

	// CondaBuildConfig is the conda build config whose version pins feed
	// the solver check. Optional.
	CondaBuildConfig string

	// FailFast stops at the first violation instead of collecting all.
	FailFast bool

	// DryRun runs `conda create --dry-run` per variant after the static
	// checks pass.
	DryRun bool
}

// Validator checks env files against a set of build variants and a
// repository context.
type Validator struct {
	opts Options
	repo RepositoryContext
}

// New creates a Validator. Option errors are usage errors: they are
// reported before any document is parsed.
func New(opts Options) (*Validator, error) {
	if len(opts.BuildTypes) == 0 {
		return nil, fmt.Errorf("at least one build type is required")
	}
	if opts.RepositoryFolder == "" {
		return nil, fmt.Errorf("a repository folder is required")
	}
	if !fileutil.DirExists(opts.RepositoryFolder) {
		return nil, fmt.Errorf("repository folder %s does not exist", opts.RepositoryFolder)
	}
	return &Validator{
		opts: opts,
		repo: RepositoryContext{Root: opts.RepositoryFolder},
	}, nil
}

// pathResult is the outcome of validating one input path, kept per input
// index so the final report is ordered by input regardless of which worker
// finished first.
type pathResult struct {
	docs       []*envconfig.Document
	violations []Violation
	graph      []graphEntry
}

type graphEntry struct {
	pkg          string
	document     string
	requirements []string
}

// Validate checks every env file (and the env files they import) and
// returns the consolidated report. An empty path list is a usage error.
// Violations never abort the run: all documents are checked and all
// violations are reported together, unless fail-fast mode is active.
func (v *Validator) Validate(ctx context.Context, paths []string) (*Report, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one env file is required")
	}
	expanded, err := fileutil.ExpandPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve env file paths: %w", err)
	}

	validatorLog.Printf("Validating %d env files: build_types=%v, repository_folder=%s",
		len(expanded), v.opts.BuildTypes, v.opts.RepositoryFolder)

	results := make([]pathResult, len(expanded))
	if v.opts.FailFast {
		// Fail-fast wants the first violation in input order, so the
		// fan-out would be wasted work. Check sequentially and stop early.
		for i, path := range expanded {
			results[i] = v.validatePath(path)
			if len(results[i].violations) > 0 {
				break
			}
		}
	} else {
		p := pool.New().WithMaxGoroutines(runtime.NumCPU())
		for i, path := range expanded {
			p.Go(func() {
				results[i] = v.validatePath(path)
			})
		}
		p.Wait()
	}

	collector := NewCollector(v.opts.FailFast)
	graph := newBuildGraph()
	var docs []*envconfig.Document
	for _, result := range results {
		docs = append(docs, result.docs...)
		for _, entry := range result.graph {
			graph.addPackage(entry.pkg, entry.document, entry.requirements)
		}
		if collector.Add(result.violations...) {
			return reportFrom(collector), nil
		}
	}

	if collector.Add(graph.detectCycles()...) {
		return reportFrom(collector), nil
	}

	if v.opts.DryRun && !collector.HasViolations() {
		if stop := v.runSolverChecks(ctx, docs, collector); stop {
			return reportFrom(collector), nil
		}
	}

	report := reportFrom(collector)
	validatorLog.Printf("Validation complete: %d violations", report.Len())
	return report, nil
}

func reportFrom(collector *Collector) *Report {
	report := &Report{}
	report.Add(collector.Violations()...)
	report.sortStable()
	return report
}

// validatePath loads one input env file with its imports and checks every
// resulting document. A load failure is a violation attributed to the input
// path, not a fatal error.
func (v *Validator) validatePath(path string) pathResult {
	docs, err := envconfig.LoadWithImports(path)
	if err != nil {
		return pathResult{violations: []Violation{{Document: path, Reason: err.Error()}}}
	}

	result := pathResult{docs: docs}
	for _, doc := range docs {
		violations, entries := v.checkDocument(doc)
		result.violations = append(result.violations, violations...)
		result.graph = append(result.graph, entries...)
	}
	return result
}

// checkDocument verifies every package spec of a document: build-type
// consistency first, then feedstock resolvability, then recipe existence.
// Resolved recipes contribute their packages to the dependency graph.
func (v *Validator) checkDocument(doc *envconfig.Document) ([]Violation, []graphEntry) {
	var violations []Violation
	var entries []graphEntry

	for _, spec := range doc.Packages {
		if !v.matchesRequestedBuildType(spec) {
			violations = append(violations, Violation{
				Document: doc.Path,
				Entry:    spec.Feedstock,
				Reason: fmt.Sprintf("not consistent with any requested build type (requested: %s; supports: %s)",
					joinBuildTypes(v.opts.BuildTypes), joinBuildTypes(spec.BuildTypes)),
			})
			continue
		}

		feedstock, err := v.repo.Resolve(spec)
		if err != nil {
			violations = append(violations, Violation{
				Document: doc.Path,
				Entry:    spec.Feedstock,
				Reason:   err.Error(),
			})
			continue
		}

		for _, name := range spec.Recipes {
			if !feedstock.HasRecipe(name) {
				violations = append(violations, Violation{
					Document: doc.Path,
					Entry:    fmt.Sprintf("%s (recipe %s)", spec.Feedstock, name),
					Reason:   fmt.Sprintf("recipe not declared by feedstock %s", feedstock.Name),
				})
			}
		}

		for _, recipe := range feedstock.Recipes {
			if len(spec.Recipes) > 0 && !slices.Contains(spec.Recipes, recipe.Name) {
				continue
			}
			for _, pkg := range recipe.PackageNames {
				entries = append(entries, graphEntry{
					pkg:          pkg,
					document:     doc.Path,
					requirements: recipe.Requirements,
				})
			}
		}
	}

	return violations, entries
}

// matchesRequestedBuildType reports whether the spec participates in at
// least one of the requested build types.
func (v *Validator) matchesRequestedBuildType(spec envconfig.PackageSpec) bool {
	for _, bt := range v.opts.BuildTypes {
		if spec.SupportsBuildType(bt) {
			return true
		}
	}
	return false
}

// runSolverChecks runs the conda dry-run per variant. Returns true when
// fail-fast stopped collection.
func (v *Validator) runSolverChecks(ctx context.Context, docs []*envconfig.Document, collector *Collector) bool {
	var pins []string
	if v.opts.CondaBuildConfig != "" {
		loaded, err := LoadVersionPins(v.opts.CondaBuildConfig)
		if err != nil {
			return collector.Add(Violation{Document: v.opts.CondaBuildConfig, Reason: err.Error()})
		}
		pins = loaded
	}

	variants := envconfig.MakeVariants(v.opts.PythonVersions, v.opts.BuildTypes, v.opts.MPITypes)
	for _, variant := range variants {
		if violation := v.solverCheck(ctx, variant, docs, pins); violation != nil {
			if collector.Add(*violation) {
				return true
			}
		}
	}
	return false
}

func joinBuildTypes(types []envconfig.BuildType) string {
	if len(types) == 0 {
		return "all"
	}
	tokens := make([]string, 0, len(types))
	for _, bt := range types {
		tokens = append(tokens, string(bt))
	}
	return strings.Join(tokens, ", ")
}
