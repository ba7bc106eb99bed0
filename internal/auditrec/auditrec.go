// Package auditrec holds the simulated audit-record table: fixed transaction,
// token and subscription records looked up by exact identifier match. A
// record whose status is failed routes the wizard to the failure view.
package auditrec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned for identifiers absent from the table. Recoverable;
// the message lists example valid identifiers for demo usability.
var ErrNotFound = errors.New("audit record not found")

// Status values observed in the reference data. The failure route compares
// against StatusFailed, never a raw literal, so an extended enumeration
// cannot silently fall through to the success view.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusActive    Status = "active"
	StatusFailed    Status = "failed"
)

// FailureDetail carries the remediation guidance attached to failed records.
type FailureDetail struct {
	Code        string   `yaml:"code"`
	Reason      string   `yaml:"reason"`
	Description string   `yaml:"description"`
	NextSteps   []string `yaml:"next_steps"`
}

// Record is one simulated audit result. Immutable once looked up.
type Record struct {
	Identifier string         `yaml:"identifier"`
	Amount     float64        `yaml:"amount,omitempty"`
	Currency   string         `yaml:"currency,omitempty"`
	Status     Status         `yaml:"status"`
	Timestamp  string         `yaml:"timestamp"`
	Metadata   map[string]any `yaml:"metadata"`
	Failure    *FailureDetail `yaml:"failure,omitempty"`
}

// Failed reports whether the record must route to the failure view.
func (r Record) Failed() bool { return r.Status == StatusFailed }

// HasMeta reports whether the metadata field is present with a non-empty
// value. Checklist statuses are derived from exactly this predicate.
func (r Record) HasMeta(key string) bool {
	v, ok := r.Metadata[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}

// MetaString returns the metadata value rendered for display, or "" when the
// field is absent.
func (r Record) MetaString(key string) string {
	v, ok := r.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// Service provides exact-match lookups over the fixed record table.
type Service struct {
	byID     map[string]Record
	examples []string
	failures []string
}

// NewService indexes the given records. The example lists shown on lookup
// misses and login screens preserve fixture order.
func NewService(records []Record) *Service {
	s := &Service{byID: make(map[string]Record, len(records))}
	for _, r := range records {
		s.byID[r.Identifier] = r
		if r.Failed() {
			s.failures = append(s.failures, r.Identifier)
		} else {
			s.examples = append(s.examples, r.Identifier)
		}
	}
	return s
}

// Find returns the record with the given identifier, or a recoverable error
// listing the demo identifiers.
func (s *Service) Find(identifier string) (Record, error) {
	r, ok := s.byID[identifier]
	if !ok {
		return Record{}, fmt.Errorf("%w: try %s for demo", ErrNotFound, orList(s.examples))
	}
	return r, nil
}

// Examples lists the success-path demo identifiers in fixture order.
func (s *Service) Examples() []string { return append([]string(nil), s.examples...) }

// FailureExamples lists the failed demo identifiers in fixture order.
func (s *Service) FailureExamples() []string { return append([]string(nil), s.failures...) }

func orList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values[:len(values)-1], ", ") + " or " + values[len(values)-1]
	}
}
