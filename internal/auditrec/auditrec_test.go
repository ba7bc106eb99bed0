package auditrec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoadsEmbeddedFixture(t *testing.T) {
	svc, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"PAY_123456789", "TOK_987654321", "ORD_456789123"}, svc.Examples())
	assert.Equal(t, []string{"PAY_FAILED_001", "PAY_FAILED_002", "PAY_FAILED_003"}, svc.FailureExamples())
}

func TestFindSuccessRecord(t *testing.T) {
	svc, err := Default()
	require.NoError(t, err)

	r, err := svc.Find("PAY_123456789")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, r.Status)
	assert.False(t, r.Failed())
	assert.Equal(t, 299.99, r.Amount)
	assert.Equal(t, "USD", r.Currency)
	assert.Equal(t, "ABC123", r.MetaString("authCode"))
}

func TestFindMissListsExamples(t *testing.T) {
	svc, err := Default()
	require.NoError(t, err)

	_, err = svc.Find("XYZ_000")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "PAY_123456789")
	assert.Contains(t, err.Error(), "TOK_987654321")
	assert.Contains(t, err.Error(), "ORD_456789123")
}

func TestFailedRecordCarriesDetail(t *testing.T) {
	svc, err := Default()
	require.NoError(t, err)

	r, err := svc.Find("PAY_FAILED_001")
	require.NoError(t, err)
	assert.True(t, r.Failed())
	require.NotNil(t, r.Failure)
	assert.Equal(t, "BAD_REQUEST_ERROR", r.Failure.Code)
	assert.Len(t, r.Failure.NextSteps, 5)

	r, err = svc.Find("PAY_FAILED_002")
	require.NoError(t, err)
	require.NotNil(t, r.Failure)
	assert.Equal(t, "GATEWAY_ERROR", r.Failure.Code)
}

func TestHasMeta(t *testing.T) {
	r := Record{Metadata: map[string]any{
		"authCode":     "ABC123",
		"attemptCount": 1,
		"empty":        "",
		"nothing":      nil,
	}}

	assert.True(t, r.HasMeta("authCode"))
	assert.True(t, r.HasMeta("attemptCount"))
	assert.False(t, r.HasMeta("empty"))
	assert.False(t, r.HasMeta("nothing"))
	assert.False(t, r.HasMeta("absent"))
}

func TestTokenRecordHasNoAmount(t *testing.T) {
	svc, err := Default()
	require.NoError(t, err)

	r, err := svc.Find("TOK_987654321")
	require.NoError(t, err)
	assert.Zero(t, r.Amount)
	assert.Empty(t, r.Currency)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, "12/2026", r.MetaString("expiryDate"))
}
