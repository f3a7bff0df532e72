package validation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/open-ce/envlint/pkg/envconfig"
	"github.com/open-ce/envlint/pkg/logger"
)

var dryRunLog = logger.New("validation:dryrun")

// condaCommand runs the conda binary and returns its combined output.
// Declared as a variable so tests can stub the external tool.
var condaCommand = func(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "conda", args...)
	return cmd.CombinedOutput()
}

// reservedPinKeys are conda_build_config.yaml keys that describe build axes
// or compiler toolchains rather than version pins.
var reservedPinKeys = map[string]bool{
	"python":           true,
	"build_type":       true,
	"mpi_type":         true,
	"channel_targets":  true,
	"pin_run_as_build": true,
	"zip_keys":         true,
	"c_compiler":       true,
	"cxx_compiler":     true,
	"fortran_compiler": true,
}

// LoadVersionPins reads a conda build config and converts its version
// entries into conda match specs, e.g. `upstreamdep1: ['2.3']` becomes
// "upstreamdep1 2.3.*". Axis and compiler keys are skipped.
func LoadVersionPins(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open provided config file %s: %w", path, err)
	}

	var config map[string]any
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var pins []string
	for key, value := range config {
		if reservedPinKeys[key] {
			continue
		}
		version := firstScalar(value)
		if version == "" {
			continue
		}
		pins = append(pins, fmt.Sprintf("%s %s", key, matchSpecVersion(version)))
	}
	sort.Strings(pins)
	dryRunLog.Printf("Loaded %d version pins from %s", len(pins), path)
	return pins, nil
}

// firstScalar returns the first scalar of a list value, or the value itself
// when it already is a scalar. Nested structures yield "".
func firstScalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		if len(v) == 0 {
			return ""
		}
		if s, ok := v[0].(string); ok {
			return s
		}
		switch n := v[0].(type) {
		case int, int64, uint64, float64:
			return fmt.Sprintf("%v", n)
		}
	case int, int64, uint64, float64:
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// matchSpecVersion widens a bare version to a wildcard match spec. Versions
// that already carry a wildcard or comparison operator are kept as-is.
func matchSpecVersion(version string) string {
	if strings.ContainsAny(version, "*<>=!") {
		return version
	}
	return version + ".*"
}

// solverCheck runs `conda create --dry-run` for one variant with the
// external dependencies of all documents plus the configured version pins,
// verifying that the environment the documents assume is actually solvable.
// A non-zero conda exit becomes a violation attributed to the conda build
// config (or the first document when none was given).
func (v *Validator) solverCheck(ctx context.Context, variant envconfig.Variant, docs []*envconfig.Document, pins []string) *Violation {
	args := []string{"create", "--dry-run", "-n", "env_check"}

	channelSeen := make(map[string]bool)
	for _, doc := range docs {
		for _, channel := range doc.Channels {
			if !channelSeen[channel] {
				channelSeen[channel] = true
				args = append(args, "--channel", channel)
			}
		}
	}

	if variant.Python != "" {
		args = append(args, fmt.Sprintf("python %s.*", variant.Python))
	}
	args = append(args, pins...)
	for _, doc := range docs {
		args = append(args, doc.ExternalDependencies...)
	}

	dryRunLog.Printf("Running solver check for variant %s: conda %s", variant, strings.Join(args, " "))
	output, err := condaCommand(ctx, args...)
	if err == nil {
		return nil
	}

	document := v.opts.CondaBuildConfig
	if document == "" && len(docs) > 0 {
		document = docs[0].Path
	}
	reason := fmt.Sprintf("conda create --dry-run failed: %v", err)
	if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
		reason = fmt.Sprintf("conda create --dry-run failed: %s", trimmed)
	}
	return &Violation{Document: document, Entry: variant.String(), Reason: reason}
}
