//go:build !integration

package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureStderr captures stderr output during test execution
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestComputeEnabled(t *testing.T) {
	tests := []struct {
		name      string
		debugEnv  string
		namespace string
		enabled   bool
	}{
		{"empty DEBUG disables all loggers", "", "validation:validator", false},
		{"wildcard enables all loggers", "*", "validation:validator", true},
		{"exact match enables logger", "validation:validator", "validation:validator", true},
		{"exact match different namespace disabled", "validation:validator", "envconfig:load", false},
		{"namespace wildcard enables matching loggers", "validation:*", "validation:feedstock", true},
		{"namespace wildcard matches deeply nested", "validation:*", "validation:sub:check", true},
		{"suffix wildcard matches", "*:load", "envconfig:load", true},
		{"middle wildcard matches", "env*load", "envconfig:load", true},
		{"comma separated list", "cli:validate,envconfig:load", "envconfig:load", true},
		{"exclusion takes precedence", "validation:*,-validation:dryrun", "validation:dryrun", false},
		{"exclusion leaves siblings enabled", "validation:*,-validation:dryrun", "validation:validator", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := debugEnv
			debugEnv = tt.debugEnv
			defer func() { debugEnv = saved }()

			if got := computeEnabled(tt.namespace); got != tt.enabled {
				t.Errorf("computeEnabled(%q) with DEBUG=%q = %v, want %v", tt.namespace, tt.debugEnv, got, tt.enabled)
			}
		})
	}
}

func TestPrintfDisabledProducesNoOutput(t *testing.T) {
	saved := debugEnv
	debugEnv = ""
	defer func() { debugEnv = saved }()

	log := New("test:silent")
	out := captureStderr(func() {
		log.Printf("should not appear: %d", 42)
	})
	if out != "" {
		t.Errorf("disabled logger produced output: %q", out)
	}
}

func TestPrintfEnabledWritesNamespaceAndMessage(t *testing.T) {
	saved := debugEnv
	debugEnv = "test:*"
	defer func() { debugEnv = saved }()

	log := New("test:output")
	out := captureStderr(func() {
		log.Printf("checked %d documents", 3)
	})
	if !strings.Contains(out, "test:output") {
		t.Errorf("output missing namespace: %q", out)
	}
	if !strings.Contains(out, "checked 3 documents") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "+") {
		t.Errorf("output missing duration suffix: %q", out)
	}
}
