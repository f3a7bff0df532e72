// Error aggregation for validation runs.
//
// Checks record every violation they find instead of stopping at the first,
// so a single run surfaces all problems across all documents. Fail-fast mode
// short-circuits collection after the first violation for callers that only
// need a yes/no answer quickly.
package validation

import (
	"errors"
	"fmt"

	"github.com/open-ce/envlint/pkg/logger"
)

var collectorLog = logger.New("validation:error_aggregation")

// Collector accumulates violations during a validation run.
type Collector struct {
	violations []Violation
	failFast   bool
}

// NewCollector creates a violation collector. With failFast set, Add reports
// that collection should stop after the first violation.
func NewCollector(failFast bool) *Collector {
	return &Collector{failFast: failFast}
}

// Add records violations and returns true when collection should stop
// because fail-fast mode is active and at least one violation exists.
func (c *Collector) Add(violations ...Violation) bool {
	for _, v := range violations {
		collectorLog.Printf("Recording violation: %v", v)
		c.violations = append(c.violations, v)
		if c.failFast {
			collectorLog.Print("Fail-fast enabled, stopping collection")
			return true
		}
	}
	return false
}

// HasViolations returns true if any violation has been recorded.
func (c *Collector) HasViolations() bool {
	return len(c.violations) > 0
}

// Count returns the number of recorded violations.
func (c *Collector) Count() int {
	return len(c.violations)
}

// Violations returns the recorded violations in insertion order.
func (c *Collector) Violations() []Violation {
	return c.violations
}

// Err returns the recorded violations joined into a single error, or nil if
// none were recorded.
func (c *Collector) Err() error {
	if len(c.violations) == 0 {
		return nil
	}
	if len(c.violations) == 1 {
		return c.violations[0]
	}
	errs := make([]error, 0, len(c.violations))
	for _, v := range c.violations {
		errs = append(errs, v)
	}
	return fmt.Errorf("found %d violations:\n%w", len(c.violations), errors.Join(errs...))
}
