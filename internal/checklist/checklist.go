// Package checklist synthesizes the per-product compliance checklist from an
// audit record. Statuses are either derived from the presence of specific
// metadata fields or fixed as best-practice recommendations; regenerating
// for the same inputs yields identical output.
package checklist

import (
	_ "embed"
	"fmt"
	"strings"

	"auditdesk/internal/auditrec"
	"auditdesk/internal/directory"

	"gopkg.in/yaml.v3"
)

// Status forms a closed enumeration over checklist entry states.
type Status string

const (
	StatusImplemented    Status = "implemented"
	StatusNotImplemented Status = "not-implemented"
	StatusRecommended    Status = "recommended"
)

// Label renders the status for display.
func (s Status) Label() string {
	switch s {
	case StatusImplemented:
		return "Implemented"
	case StatusNotImplemented:
		return "Not Implemented"
	case StatusRecommended:
		return "Recommended"
	}
	return string(s)
}

// Entry is one requirement line in the generated checklist. AutoDerived is
// true exactly when the status was computed from audit data rather than
// fixed as a recommendation.
type Entry struct {
	ID          string
	Category    string
	Requirement string
	Status      Status
	AutoDerived bool
	Suggestion  string
	Explanation string
}

// Template is one hand-authored requirement rule. Derive is "meta:<key>" to
// test metadata presence, "status:completed" to test the record status, or
// empty for a static recommendation.
type Template struct {
	ID          string `yaml:"id"`
	Category    string `yaml:"category"`
	Requirement string `yaml:"requirement"`
	Derive      string `yaml:"derive,omitempty"`
	Suggestion  string `yaml:"suggestion"`
	Explanation string `yaml:"explanation"`
}

//go:embed templates.yaml
var templatesYAML []byte

var templates = mustLoadTemplates(templatesYAML)

func mustLoadTemplates(data []byte) map[string][]Template {
	m, err := LoadTemplates(data)
	if err != nil {
		panic(fmt.Sprintf("checklist: embedded templates invalid: %v", err))
	}
	return m
}

// LoadTemplates parses a template document keyed by product identifier.
func LoadTemplates(data []byte) (map[string][]Template, error) {
	var m map[string][]Template
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse checklist templates: %w", err)
	}
	return m, nil
}

// Templates exposes the embedded rule tables for invariant tests.
func Templates() map[string][]Template { return templates }

// Generate produces the ordered checklist for the product and audit record.
// Unknown product identifiers yield an empty, non-nil checklist; this
// mirrors the reference behavior and is deliberate, not an error.
func Generate(product directory.Product, record auditrec.Record) []Entry {
	tmpls, ok := templates[product.ID]
	if !ok {
		return []Entry{}
	}

	entries := make([]Entry, 0, len(tmpls))
	for _, t := range tmpls {
		e := Entry{
			ID:          t.ID,
			Category:    t.Category,
			Requirement: t.Requirement,
			Explanation: t.Explanation,
		}
		switch {
		case t.Derive == "":
			e.Status = StatusRecommended
			e.Suggestion = t.Suggestion
		default:
			e.AutoDerived = true
			if satisfied(t.Derive, record) {
				e.Status = StatusImplemented
			} else {
				e.Status = StatusNotImplemented
				e.Suggestion = t.Suggestion
			}
		}
		entries = append(entries, e)
	}
	return entries
}

func satisfied(rule string, record auditrec.Record) bool {
	switch {
	case strings.HasPrefix(rule, "meta:"):
		return record.HasMeta(strings.TrimPrefix(rule, "meta:"))
	case strings.HasPrefix(rule, "status:"):
		return record.Status == auditrec.Status(strings.TrimPrefix(rule, "status:"))
	}
	return false
}

// Tally counts entries per status.
type Tally struct {
	Implemented    int
	NotImplemented int
	Recommended    int
}

// Count tallies the checklist.
func Count(entries []Entry) Tally {
	var t Tally
	for _, e := range entries {
		switch e.Status {
		case StatusImplemented:
			t.Implemented++
		case StatusNotImplemented:
			t.NotImplemented++
		case StatusRecommended:
			t.Recommended++
		}
	}
	return t
}

// Total is the number of checks in the tally.
func (t Tally) Total() int { return t.Implemented + t.NotImplemented + t.Recommended }

// CompliancePercent is the rounded share of implemented checks, as shown on
// the full report. Zero checks count as zero compliance.
func (t Tally) CompliancePercent() int {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return int(float64(t.Implemented)/float64(total)*100 + 0.5)
}
