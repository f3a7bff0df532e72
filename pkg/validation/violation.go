package validation

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Violation is one validation failure, attributed to the document it was
// found in. Entry names the offending package or variant when there is one;
// parse failures leave it empty.
type Violation struct {
	Document string `json:"document"`
	Entry    string `json:"entry,omitempty"`
	Reason   string `json:"reason"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	if v.Entry == "" {
		return fmt.Sprintf("%s: %s", v.Document, v.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", v.Document, v.Entry, v.Reason)
}

// Report is the consolidated result of one validation run.
type Report struct {
	Violations []Violation `json:"violations"`
}

// Add appends violations to the report.
func (r *Report) Add(violations ...Violation) {
	r.Violations = append(r.Violations, violations...)
}

// HasViolations reports whether any violation was recorded.
func (r *Report) HasViolations() bool {
	return len(r.Violations) > 0
}

// Len returns the number of recorded violations.
func (r *Report) Len() int {
	return len(r.Violations)
}

// Messages returns the violations as printable strings.
func (r *Report) Messages() []string {
	messages := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		messages = append(messages, v.Error())
	}
	return messages
}

// MarshalJSON emits a stable report shape even when empty.
func (r *Report) MarshalJSON() ([]byte, error) {
	violations := r.Violations
	if violations == nil {
		violations = []Violation{}
	}
	return json.Marshal(struct {
		Violations []Violation `json:"violations"`
	}{Violations: violations})
}

// sortStable orders violations by document, then entry, then reason, so a
// report is deterministic regardless of per-document completion order.
func (r *Report) sortStable() {
	sort.SliceStable(r.Violations, func(i, j int) bool {
		a, b := r.Violations[i], r.Violations[j]
		if a.Document != b.Document {
			return a.Document < b.Document
		}
		if a.Entry != b.Entry {
			return a.Entry < b.Entry
		}
		return a.Reason < b.Reason
	})
}
