// Package report renders and delivers audit reports: the notification email
// sent at the end of the guided flow and the plain-text download offered on
// the self-service report view. All delivery is simulated; rendering is pure
// so the outputs are derivable from session state alone.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auditdesk/internal/checklist"
	"auditdesk/internal/directory"
	"auditdesk/internal/features"
	"auditdesk/internal/wizard"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntegrationTeamEmail receives admin-track reports alongside the account
// manager.
const IntegrationTeamEmail = "integrations-team@auditdesk.io"

// Recipient is one addressee of the notification email.
type Recipient struct {
	Label string
	Name  string
	Email string
}

// Recipients computes the two addressees for a track. The account manager is
// always first; the second slot goes to the integration team on the admin
// track and to the merchant owner on the self-service track.
func Recipients(track wizard.Track, m directory.Merchant) [2]Recipient {
	first := Recipient{
		Label: "Account Manager",
		Name:  m.AccountManager.Name,
		Email: m.AccountManager.Email,
	}
	if track == wizard.TrackAdmin {
		return [2]Recipient{first, {
			Label: "Integration Team",
			Name:  "Integration Team",
			Email: IntegrationTeamEmail,
		}}
	}
	return [2]Recipient{first, {
		Label: "Merchant Owner",
		Name:  m.CompanyName,
		Email: m.Email,
	}}
}

// Input bundles everything a rendered report draws on.
type Input struct {
	Merchant   directory.Merchant
	Product    directory.Product
	Identifier string
	Entries    []checklist.Entry
	Gaps       []features.Gap
	Now        time.Time
}

// Subject renders the email subject line.
func Subject(in Input) string {
	return fmt.Sprintf("Product Audit Report - %s (%s)", in.Product.Name, in.Merchant.ID)
}

func statusMarker(s checklist.Status) string {
	switch s {
	case checklist.StatusImplemented:
		return "✅"
	case checklist.StatusNotImplemented:
		return "❌"
	default:
		return "⚠️"
	}
}

// BuildEmail renders the notification email body, subject line included.
// The body is editable in the UI before sending; this is only the initial
// draft.
func BuildEmail(in Input) string {
	tally := checklist.Count(in.Entries)

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n\n", Subject(in))
	fmt.Fprintf(&b, "Dear %s,\n\n", in.Merchant.AccountManager.Name)
	fmt.Fprintf(&b, "Please find below the audit report for %s (%s) regarding their %s implementation.\n\n",
		in.Merchant.CompanyName, in.Merchant.ID, in.Product.Name)

	b.WriteString("AUDIT SUMMARY:\n")
	fmt.Fprintf(&b, "- Product: %s\n", in.Product.Name)
	fmt.Fprintf(&b, "- Audit Identifier: %s\n", in.Identifier)
	fmt.Fprintf(&b, "- Audit Date: %s\n", in.Now.Format("January 2, 2006"))
	fmt.Fprintf(&b, "- Total Checks: %d\n", tally.Total())
	fmt.Fprintf(&b, "- Implemented: %d\n", tally.Implemented)
	fmt.Fprintf(&b, "- Not Implemented: %d\n", tally.NotImplemented)
	fmt.Fprintf(&b, "- Recommended: %d\n", tally.Recommended)

	if len(in.Gaps) > 0 {
		fmt.Fprintf(&b, "\nMISSING FEATURES (%d):\n", len(in.Gaps))
		for _, g := range in.Gaps {
			fmt.Fprintf(&b, "- %s (%s Impact): %s\n", g.Feature, g.Impact, g.Description)
		}
	}

	b.WriteString("\nDETAILED CHECKLIST:\n")
	for _, e := range in.Entries {
		fmt.Fprintf(&b, "\n%s %s\n", statusMarker(e.Status), e.Requirement)
		fmt.Fprintf(&b, "   Category: %s\n", e.Category)
		fmt.Fprintf(&b, "   Status: %s\n", strings.ToUpper(string(e.Status)))
		if e.Suggestion != "" {
			fmt.Fprintf(&b, "   Suggestion: %s\n", e.Suggestion)
		}
		if e.AutoDerived {
			b.WriteString("   (Auto-populated from audit data)\n")
		}
	}

	b.WriteString("\nPlease review and follow up with the merchant as needed.\n\n")
	b.WriteString("Best regards,\nProduct Audit System")
	return b.String()
}

// BuildDownload renders the plain-text report offered on the report view.
func BuildDownload(in Input) string {
	tally := checklist.Count(in.Entries)

	var b strings.Builder
	b.WriteString("AUDIT REPORT\n============\n\n")
	fmt.Fprintf(&b, "Merchant: %s\n", in.Merchant.CompanyName)
	fmt.Fprintf(&b, "MID: %s\n", in.Merchant.ID)
	fmt.Fprintf(&b, "Product: %s\n", in.Product.Name)
	fmt.Fprintf(&b, "Audit Date: %s\n", in.Now.Format("1/2/2006, 3:04:05 PM"))
	fmt.Fprintf(&b, "Identifier: %s\n", in.Identifier)

	b.WriteString("\nSUMMARY\n-------\n")
	fmt.Fprintf(&b, "Total Checks: %d\n", tally.Total())
	fmt.Fprintf(&b, "Implemented: %d\n", tally.Implemented)
	fmt.Fprintf(&b, "Not Implemented: %d\n", tally.NotImplemented)
	fmt.Fprintf(&b, "Recommended: %d\n", tally.Recommended)

	b.WriteString("\nDETAILED CHECKLIST\n------------------\n")
	for i, e := range in.Entries {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, e.Requirement)
		fmt.Fprintf(&b, "   Category: %s\n", e.Category)
		fmt.Fprintf(&b, "   Status: %s\n", strings.ToUpper(string(e.Status)))
		if e.Suggestion != "" {
			fmt.Fprintf(&b, "   Suggestion: %s\n", e.Suggestion)
		}
	}

	b.WriteString("\n---\nGenerated by Product Audit Tool\n")
	return b.String()
}

// BuildMarkdown renders the full report view: status definitions, compliance
// summary and a per-requirement breakdown with explanations.
func BuildMarkdown(in Input) string {
	tally := checklist.Count(in.Entries)

	var b strings.Builder
	b.WriteString("# Detailed Audit Report\n\n")
	b.WriteString("Complete compliance audit report with explanations.\n\n")

	b.WriteString("## Report Information\n\n")
	fmt.Fprintf(&b, "- **Merchant**: %s\n", in.Merchant.CompanyName)
	fmt.Fprintf(&b, "- **Merchant ID**: %s\n", in.Merchant.ID)
	fmt.Fprintf(&b, "- **Product**: %s\n", in.Product.Name)
	fmt.Fprintf(&b, "- **Audit Date**: %s\n\n", in.Now.Format("1/2/2006, 3:04:05 PM"))

	b.WriteString("## Status Definitions\n\n")
	b.WriteString("- **Implemented** — This requirement is properly configured and working as expected. No action needed.\n")
	b.WriteString("- **Not Implemented** — This is a mandatory requirement that is currently missing. Immediate action required to ensure compliance.\n")
	b.WriteString("- **Recommended** — This is a best practice feature that would enhance your implementation.\n\n")

	b.WriteString("## Compliance Summary\n\n")
	fmt.Fprintf(&b, "- Implemented: %d (requirements met)\n", tally.Implemented)
	fmt.Fprintf(&b, "- Not Implemented: %d (action required)\n", tally.NotImplemented)
	fmt.Fprintf(&b, "- Recommended: %d (best practices)\n\n", tally.Recommended)
	fmt.Fprintf(&b, "**Overall Compliance Rate: %d%%**\n\n", tally.CompliancePercent())

	b.WriteString("## Detailed Requirements Analysis\n")
	for i, e := range in.Entries {
		fmt.Fprintf(&b, "\n### %d. %s — %s\n\n", i+1, e.Requirement, e.Status.Label())
		fmt.Fprintf(&b, "Category: %s\n", e.Category)
		if e.Explanation != "" {
			fmt.Fprintf(&b, "\n%s\n", e.Explanation)
		}
		if e.Suggestion != "" {
			label := "Recommendation"
			if e.Status == checklist.StatusNotImplemented {
				label = "Action Required"
			}
			fmt.Fprintf(&b, "\n**%s:** %s\n", label, e.Suggestion)
		}
	}

	if tally.NotImplemented > 0 {
		plural := "s"
		verb := "need"
		if tally.NotImplemented == 1 {
			plural = ""
			verb = "needs"
		}
		b.WriteString("\n## Immediate Action Required\n\n")
		fmt.Fprintf(&b, "You have %d mandatory requirement%s that %s to be implemented for full compliance.\n\n",
			tally.NotImplemented, plural, verb)
		fmt.Fprintf(&b, "Please contact your account manager (%s at %s) for assistance with implementing these requirements.\n",
			in.Merchant.AccountManager.Name, in.Merchant.AccountManager.Email)
	}
	return b.String()
}

// Filename names a downloaded report after the merchant and the moment of
// download.
func Filename(mid string, now time.Time) string {
	return fmt.Sprintf("audit-report-%s-%d.txt", mid, now.UnixMilli())
}

// Save writes the plain-text report into dir and returns the full path.
func Save(dir string, in Input) (string, error) {
	path := filepath.Join(dir, Filename(in.Merchant.ID, in.Now))
	if err := os.WriteFile(path, []byte(BuildDownload(in)), 0o644); err != nil {
		return "", fmt.Errorf("saving report: %w", err)
	}
	return path, nil
}

// Sender simulates email delivery. It never contacts a mail server; sending
// assigns a message ID and logs the addressees.
type Sender struct {
	log *zap.Logger
}

// NewSender wires a sender to a logger. A nil logger is replaced with a
// no-op.
func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

// Send records the simulated delivery and returns the assigned message ID.
func (s *Sender) Send(recipients [2]Recipient, subject, body string) string {
	id := uuid.NewString()
	s.log.Info("audit report sent",
		zap.String("message_id", id),
		zap.String("subject", subject),
		zap.String("to", recipients[0].Email),
		zap.String("cc", recipients[1].Email),
		zap.Int("body_bytes", len(body)))
	return id
}
