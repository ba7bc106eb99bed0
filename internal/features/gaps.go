// Package features computes the gap between a product's required feature set
// and a merchant account's enabled features, annotated with impact tiers
// from a fixed reference table.
package features

import (
	"fmt"
	"math"
)

// Impact tiers form a closed enumeration.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Gap is a required feature the account does not have enabled. Derived, not
// stored; recomputed whenever the merchant/product pairing changes.
type Gap struct {
	Feature     string
	Impact      Impact
	Description string
}

// impactTable annotates known features. Features absent from the table get
// the Low-impact default description.
var impactTable = map[string]Gap{
	"Fraud Detection": {
		Feature:     "Fraud Detection",
		Impact:      ImpactHigh,
		Description: "Advanced fraud screening and risk assessment capabilities",
	},
	"PCI Compliance": {
		Feature:     "PCI Compliance",
		Impact:      ImpactHigh,
		Description: "Payment Card Industry Data Security Standard compliance",
	},
	"SSL Encryption": {
		Feature:     "SSL Encryption",
		Impact:      ImpactHigh,
		Description: "Secure Socket Layer encryption for data transmission",
	},
	"Data Encryption": {
		Feature:     "Data Encryption",
		Impact:      ImpactHigh,
		Description: "End-to-end data encryption for sensitive information",
	},
	"Token Lifecycle Management": {
		Feature:     "Token Lifecycle Management",
		Impact:      ImpactMedium,
		Description: "Comprehensive token creation, rotation, and expiration management",
	},
	"Invoice Generation": {
		Feature:     "Invoice Generation",
		Impact:      ImpactMedium,
		Description: "Automated invoice creation and delivery system",
	},
	"Dunning Management": {
		Feature:     "Dunning Management",
		Impact:      ImpactMedium,
		Description: "Automated retry logic for failed recurring payments",
	},
}

// ComputeGaps returns required minus enabled as a set difference, preserving
// the order of required. Pure function.
func ComputeGaps(required, enabled []string) []Gap {
	enabledSet := make(map[string]bool, len(enabled))
	for _, f := range enabled {
		enabledSet[f] = true
	}

	var gaps []Gap
	for _, f := range required {
		if enabledSet[f] {
			continue
		}
		if g, ok := impactTable[f]; ok {
			gaps = append(gaps, g)
			continue
		}
		gaps = append(gaps, Gap{
			Feature:     f,
			Impact:      ImpactLow,
			Description: fmt.Sprintf("%s functionality is required for this product", f),
		})
	}
	return gaps
}

// Present returns the required features that are enabled, preserving the
// order of required. The dashboard renders these as readiness badges.
func Present(required, enabled []string) []string {
	enabledSet := make(map[string]bool, len(enabled))
	for _, f := range enabled {
		enabledSet[f] = true
	}
	var out []string
	for _, f := range required {
		if enabledSet[f] {
			out = append(out, f)
		}
	}
	return out
}

// ReadinessPercent is the rounded percentage of required features enabled.
// An empty required set counts as fully ready.
func ReadinessPercent(required, enabled []string) int {
	if len(required) == 0 {
		return 100
	}
	present := len(Present(required, enabled))
	return int(math.Round(float64(present) / float64(len(required)) * 100))
}
