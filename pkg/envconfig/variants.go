package envconfig

import (
	"fmt"
	"regexp"
	"strings"
)

// BuildType is one value of the hardware/software build axis, e.g. "cuda"
// or "cpu". The axis is open-ended: any lowercase token is accepted so new
// variants can be introduced without a tool change.
type BuildType string

// Well-known build types.
const (
	BuildTypeCUDA BuildType = "cuda"
	BuildTypeCPU  BuildType = "cpu"
)

var buildTypeToken = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ParseBuildTypes parses a comma-separated build type list such as
// "cuda,cpu". An empty list or a malformed token is an error. Duplicates are
// removed while preserving order.
func ParseBuildTypes(value string) ([]BuildType, error) {
	var result []BuildType
	seen := make(map[BuildType]bool)
	for _, raw := range strings.Split(value, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if !buildTypeToken.MatchString(token) {
			return nil, fmt.Errorf("invalid build type %q", token)
		}
		bt := BuildType(token)
		if seen[bt] {
			continue
		}
		seen[bt] = true
		result = append(result, bt)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("at least one build type is required")
	}
	return result, nil
}

// ParseList parses a comma-separated list of tokens, trimming whitespace and
// dropping empty entries. Used for --python_versions and similar axes.
func ParseList(value string) []string {
	var result []string
	for _, raw := range strings.Split(value, ",") {
		token := strings.TrimSpace(raw)
		if token != "" {
			result = append(result, token)
		}
	}
	return result
}

// Variant is one combination of the requested build axes. Every document is
// checked against each variant independently.
type Variant struct {
	Python    string
	BuildType BuildType
	MPIType   string
}

// String returns a stable variant label such as "py3.11-cuda-openmpi".
func (v Variant) String() string {
	return fmt.Sprintf("py%s-%s-%s", v.Python, v.BuildType, v.MPIType)
}

// MakeVariants returns the cross product of the requested axes, in input
// order. Empty axes are filled with a single empty value so the product is
// never empty as long as buildTypes is non-empty.
func MakeVariants(pythons []string, buildTypes []BuildType, mpiTypes []string) []Variant {
	if len(pythons) == 0 {
		pythons = []string{""}
	}
	if len(mpiTypes) == 0 {
		mpiTypes = []string{""}
	}
	var variants []Variant
	for _, py := range pythons {
		for _, bt := range buildTypes {
			for _, mpi := range mpiTypes {
				variants = append(variants, Variant{Python: py, BuildType: bt, MPIType: mpi})
			}
		}
	}
	return variants
}
