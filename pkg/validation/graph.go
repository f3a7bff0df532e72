package validation

import (
	"slices"
	"sort"
	"strings"

	"github.com/open-ce/envlint/pkg/logger"
)

var graphLog = logger.New("validation:graph")

// maxReportedCycles caps how many dependency cycles a single run reports.
const maxReportedCycles = 10

// buildGraph is the package dependency graph across all validated documents.
// Edges only exist between packages that are built by the documents under
// validation; dependencies satisfied from channels are ignored.
type buildGraph struct {
	deps   map[string][]string
	origin map[string]string
}

func newBuildGraph() *buildGraph {
	return &buildGraph{
		deps:   make(map[string][]string),
		origin: make(map[string]string),
	}
}

// addPackage registers a package produced by a document along with the raw
// requirement names it declares. Requirements are filtered to in-graph
// packages later, once every producer is known.
func (g *buildGraph) addPackage(name, document string, requirements []string) {
	if _, exists := g.deps[name]; !exists {
		g.origin[name] = document
	}
	g.deps[name] = append(g.deps[name], requirements...)
}

// detectCycles returns one violation per dependency cycle, capped at
// maxReportedCycles. Build dependencies must form a directed acyclic graph.
func (g *buildGraph) detectCycles() []Violation {
	// Filter requirement lists down to packages that are actually built.
	filtered := make(map[string][]string, len(g.deps))
	for name, requirements := range g.deps {
		var deps []string
		for _, dep := range requirements {
			if _, inGraph := g.deps[dep]; inGraph && dep != name {
				deps = append(deps, dep)
			}
		}
		sort.Strings(deps)
		filtered[name] = slices.Compact(deps)
	}

	names := make([]string, 0, len(filtered))
	for name := range filtered {
		names = append(names, name)
	}
	sort.Strings(names)

	seenCycles := make(map[string]bool)
	var violations []Violation
	for _, start := range names {
		for _, cycle := range findAllCycles(filtered, start, nil) {
			key := canonicalCycle(cycle)
			if seenCycles[key] {
				continue
			}
			seenCycles[key] = true

			graphLog.Printf("Dependency cycle found: %v", cycle)
			violations = append(violations, Violation{
				Document: g.origin[cycle[0]],
				Entry:    strings.Join(cycle, " -> "),
				Reason:   "build dependencies must form a directed acyclic graph",
			})
			if len(violations) >= maxReportedCycles {
				return violations
			}
		}
	}
	return violations
}

// findAllCycles performs a depth first search from current, returning every
// dependency path that revisits a node.
func findAllCycles(deps map[string][]string, current string, seen []string) [][]string {
	branch := append(slices.Clone(seen), current)
	if slices.Contains(seen, current) {
		return [][]string{branch}
	}

	var result [][]string
	for _, dep := range deps[current] {
		result = append(result, findAllCycles(deps, dep, branch)...)
	}
	return result
}

// canonicalCycle normalizes a cycle to a rotation-independent key so the
// same loop discovered from different start nodes is reported once.
func canonicalCycle(cycle []string) string {
	// The last element repeats the entry point of the loop; drop it and
	// trim any lead-in path before the loop starts.
	loopStart := slices.Index(cycle[:len(cycle)-1], cycle[len(cycle)-1])
	loop := cycle[loopStart : len(cycle)-1]

	minIdx := 0
	for i, name := range loop {
		if name < loop[minIdx] {
			minIdx = i
		}
	}
	rotated := append(slices.Clone(loop[minIdx:]), loop[:minIdx]...)
	return strings.Join(rotated, "->")
}
