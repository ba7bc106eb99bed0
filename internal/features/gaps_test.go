package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeGapsIsOrderedSetDifference(t *testing.T) {
	required := []string{"Payment Processing", "Fraud Detection", "PCI Compliance", "SSL Encryption"}
	enabled := []string{"Payment Processing", "Multi-currency", "Webhooks"}

	gaps := ComputeGaps(required, enabled)

	names := make([]string, len(gaps))
	for i, g := range gaps {
		names[i] = g.Feature
	}
	assert.Equal(t, []string{"Fraud Detection", "PCI Compliance", "SSL Encryption"}, names)
}

func TestComputeGapsAnnotatesFromTable(t *testing.T) {
	gaps := ComputeGaps([]string{"Fraud Detection", "Dunning Management"}, nil)

	assert.Equal(t, ImpactHigh, gaps[0].Impact)
	assert.Equal(t, "Advanced fraud screening and risk assessment capabilities", gaps[0].Description)
	assert.Equal(t, ImpactMedium, gaps[1].Impact)
}

func TestComputeGapsDefaultsUnknownFeaturesToLow(t *testing.T) {
	gaps := ComputeGaps([]string{"Quantum Billing"}, nil)

	assert.Len(t, gaps, 1)
	assert.Equal(t, ImpactLow, gaps[0].Impact)
	assert.Equal(t, "Quantum Billing functionality is required for this product", gaps[0].Description)
}

func TestComputeGapsNoGapForEnabledFeature(t *testing.T) {
	for _, feature := range []string{"Fraud Detection", "PCI Compliance", "Unknown Thing"} {
		gaps := ComputeGaps([]string{feature}, []string{feature})
		assert.Empty(t, gaps, "feature %q is enabled, no gap expected", feature)
	}
}

func TestComputeGapsEmptyRequired(t *testing.T) {
	assert.Empty(t, ComputeGaps(nil, []string{"Payment Processing"}))
}

func TestReadinessPercent(t *testing.T) {
	// TechCorp EU Division against payment-gateway: 1 of 4 required present.
	required := []string{"Payment Processing", "Fraud Detection", "PCI Compliance", "SSL Encryption"}
	enabled := []string{"Payment Processing", "Multi-currency", "Webhooks"}

	assert.Equal(t, 25, ReadinessPercent(required, enabled))
	assert.Equal(t, []string{"Payment Processing"}, Present(required, enabled))

	assert.Equal(t, 100, ReadinessPercent(nil, nil))
	assert.Equal(t, 100, ReadinessPercent(required, required))
	assert.Equal(t, 0, ReadinessPercent(required, nil))
	assert.Equal(t, 67, ReadinessPercent([]string{"a", "b", "c"}, []string{"a", "b"}))
}
