package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auditdesk/internal/auditrec"
	"auditdesk/internal/checklist"
	"auditdesk/internal/directory"
	"auditdesk/internal/features"
	"auditdesk/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureInput(t *testing.T) Input {
	t.Helper()
	dir, err := directory.Default()
	require.NoError(t, err)
	audits, err := auditrec.Default()
	require.NoError(t, err)

	m, err := dir.Find("MID123456")
	require.NoError(t, err)
	p, ok := m.Product("payment-gateway")
	require.True(t, ok)
	r, err := audits.Find("PAY_123456789")
	require.NoError(t, err)

	return Input{
		Merchant:   m,
		Product:    p,
		Identifier: r.Identifier,
		Entries:    checklist.Generate(p, r),
		Gaps:       features.ComputeGaps(p.RequiredFeatures, m.AvailableFeatures),
		Now:        time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestSubject(t *testing.T) {
	in := fixtureInput(t)
	assert.Equal(t, "Product Audit Report - Payment Gateway (MID123456)", Subject(in))
}

func TestBuildEmailStructure(t *testing.T) {
	in := fixtureInput(t)
	body := BuildEmail(in)

	assert.True(t, strings.HasPrefix(body, "Subject: Product Audit Report - Payment Gateway (MID123456)\n"))
	assert.Contains(t, body, "Dear Sarah Johnson,")
	assert.Contains(t, body, "audit report for TechCorp Solutions (Parent) (MID123456)")
	assert.Contains(t, body, "AUDIT SUMMARY:")
	assert.Contains(t, body, "- Audit Identifier: PAY_123456789")
	assert.Contains(t, body, "- Audit Date: March 14, 2026")
	assert.Contains(t, body, "- Total Checks: 8")
	assert.Contains(t, body, "DETAILED CHECKLIST:")
	assert.Contains(t, body, "✅ API Key Generation")
	assert.Contains(t, body, "(Auto-populated from audit data)")
	assert.True(t, strings.HasSuffix(body, "Best regards,\nProduct Audit System"))
}

func TestBuildEmailMissingFeaturesSection(t *testing.T) {
	in := fixtureInput(t)
	body := BuildEmail(in)
	require.NotEmpty(t, in.Gaps)
	assert.Contains(t, body, "MISSING FEATURES (2):")
	assert.Contains(t, body, "- PCI Compliance (High Impact): Payment Card Industry Data Security Standard compliance")

	in.Gaps = nil
	assert.NotContains(t, BuildEmail(in), "MISSING FEATURES")
}

func TestBuildEmailSuggestionOnlyWhenPresent(t *testing.T) {
	in := fixtureInput(t)
	body := BuildEmail(in)

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Suggestion:") {
			assert.NotEqual(t, "Suggestion:", trimmed)
		}
	}
}

func TestBuildDownloadStructure(t *testing.T) {
	in := fixtureInput(t)
	body := BuildDownload(in)

	assert.True(t, strings.HasPrefix(body, "AUDIT REPORT\n============\n"))
	assert.Contains(t, body, "Merchant: TechCorp Solutions (Parent)")
	assert.Contains(t, body, "MID: MID123456")
	assert.Contains(t, body, "Identifier: PAY_123456789")
	assert.Contains(t, body, "SUMMARY\n-------\n")
	assert.Contains(t, body, "1. API Key Generation")
	assert.Contains(t, body, "Status: IMPLEMENTED")
	assert.True(t, strings.HasSuffix(body, "Generated by Product Audit Tool\n"))

	// Deterministic for a fixed clock.
	assert.Equal(t, body, BuildDownload(in))
}

func TestBuildMarkdownSections(t *testing.T) {
	in := fixtureInput(t)
	md := BuildMarkdown(in)

	assert.Contains(t, md, "# Detailed Audit Report")
	assert.Contains(t, md, "## Compliance Summary")
	assert.Contains(t, md, "**Overall Compliance Rate: 50%**")
	assert.Contains(t, md, "### 1. API Key Generation — Implemented")
	// No failed derivations for the completed demo payment, so no call to
	// action at the bottom.
	assert.NotContains(t, md, "Immediate Action Required")
}

func TestBuildMarkdownImmediateAction(t *testing.T) {
	in := fixtureInput(t)
	audits, err := auditrec.Default()
	require.NoError(t, err)
	r, err := audits.Find("TOK_987654321")
	require.NoError(t, err)
	in.Identifier = r.Identifier
	in.Entries = checklist.Generate(in.Product, r)

	md := BuildMarkdown(in)
	assert.Contains(t, md, "## Immediate Action Required")
	assert.Contains(t, md, "Sarah Johnson at sarah.johnson@company.com")
}

func TestSaveWritesReport(t *testing.T) {
	in := fixtureInput(t)
	dir := t.TempDir()

	path, err := Save(dir, in)
	require.NoError(t, err)
	assert.Equal(t, Filename("MID123456", in.Now), filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, BuildDownload(in), string(data))
}

func TestFilename(t *testing.T) {
	now := time.UnixMilli(1757000000000)
	assert.Equal(t, "audit-report-MID123456-1757000000000.txt", Filename("MID123456", now))
}

func TestRecipientsByTrack(t *testing.T) {
	in := fixtureInput(t)

	admin := Recipients(wizard.TrackAdmin, in.Merchant)
	assert.Equal(t, "Sarah Johnson", admin[0].Name)
	assert.Equal(t, "sarah.johnson@company.com", admin[0].Email)
	assert.Equal(t, "Integration Team", admin[1].Label)
	assert.Equal(t, IntegrationTeamEmail, admin[1].Email)

	merchant := Recipients(wizard.TrackMerchant, in.Merchant)
	assert.Equal(t, admin[0], merchant[0])
	assert.Equal(t, "Merchant Owner", merchant[1].Label)
	assert.Equal(t, "owner@techcorp.com", merchant[1].Email)
}

func TestSenderAssignsMessageIDs(t *testing.T) {
	in := fixtureInput(t)
	s := NewSender(nil)
	rec := Recipients(wizard.TrackAdmin, in.Merchant)

	first := s.Send(rec, Subject(in), BuildEmail(in))
	second := s.Send(rec, Subject(in), BuildEmail(in))
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
