package tui

import (
	"fmt"
	"sort"
	"strings"

	"auditdesk/internal/checklist"
	"auditdesk/internal/features"
	"auditdesk/internal/report"
	"auditdesk/internal/wizard"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var page string
	switch {
	case m.busy && m.pending == opChecklist:
		page = m.viewGenerating()
	default:
		switch m.session.State() {
		case wizard.StateLoggedOut:
			page = m.viewLogin()
		case wizard.StateSelectingIdentity:
			page = m.viewIdentity()
		case wizard.StateDashboard:
			page = m.viewDashboard()
		case wizard.StateAuditOverview:
			page = m.viewOverview()
		case wizard.StateAuditIdentifier:
			page = m.viewIdentifier()
		case wizard.StateAuditProcessing:
			page = m.viewProcessing()
		case wizard.StateAuditValidation:
			page = m.viewValidation()
		case wizard.StateAuditFailure:
			page = m.viewFailure()
		case wizard.StateAuditChecklist:
			page = m.viewChecklist()
		case wizard.StateAuditNotify:
			page = m.viewNotify()
		case wizard.StateAuditReport:
			page = m.viewReport()
		}
	}

	return strings.Join([]string{
		m.viewHeader(),
		m.styles.Content.Render(page),
		m.viewFooter(),
	}, "\n")
}

func (m Model) viewHeader() string {
	title := "Product Audit Tool"
	if mc := m.session.Merchant(); mc != nil {
		title = fmt.Sprintf("Product Audit Dashboard — %s • %s", mc.CompanyName, mc.ID)
	} else if p := m.session.Parent(); p != nil {
		title = fmt.Sprintf("Select Merchant ID to Audit — %s", p.CompanyName)
	}
	return m.styles.Header.Width(m.width).Render(title)
}

func (m Model) viewFooter() string {
	if m.busy {
		return m.styles.Footer.Render(m.spinner.View() + " " + m.busyLabel())
	}

	var parts []string
	if m.errMsg != "" {
		parts = append(parts, m.styles.Error.Render(m.errMsg))
	}
	if m.notice != "" {
		parts = append(parts, m.styles.Success.Render(m.notice))
	}
	parts = append(parts, m.styles.Footer.Render(m.keyHints()))
	return strings.Join(parts, "\n")
}

func (m Model) busyLabel() string {
	switch m.pending {
	case opLoginAdmin:
		return "Accessing..."
	case opLoginMerchant:
		return "Signing In..."
	case opLookup:
		if m.session.Track() == wizard.TrackMerchant {
			return "Processing..."
		}
		return "Validating..."
	case opChecklist:
		return "Analyzing audit data and generating checklist..."
	case opSend:
		return "Sending..."
	case opRequest:
		return "Raising Request..."
	}
	return "Working..."
}

func (m Model) keyHints() string {
	common := "ctrl+c quit"
	if m.session.State() != wizard.StateLoggedOut {
		common = "ctrl+l logout • " + common
	}
	switch m.session.State() {
	case wizard.StateLoggedOut:
		return "tab switch login • enter submit • " + common
	case wizard.StateSelectingIdentity:
		return "↑/↓ select • enter choose MID • " + common
	case wizard.StateDashboard:
		return "↑/↓ select • enter start audit • r raise request • " + common
	case wizard.StateAuditOverview:
		if m.session.Track() == wizard.TrackAdmin {
			return "enter continue • esc back to dashboard • " + common
		}
		return "enter start audit • esc back to dashboard • " + common
	case wizard.StateAuditIdentifier:
		return "enter validate & fetch details • esc back • " + common
	case wizard.StateAuditValidation:
		return "enter proceed to checklist generation • esc back • " + common
	case wizard.StateAuditFailure:
		if m.session.Track() == wizard.TrackAdmin {
			return "esc try another payment • n start new audit • " + common
		}
		return "esc back to dashboard • n start new audit • " + common
	case wizard.StateAuditChecklist:
		return "↑/↓ scroll • enter proceed to email confirmation • esc back • " + common
	case wizard.StateAuditNotify:
		if m.session.ReportSent() {
			return "esc back • " + common
		}
		return "s send email • esc back • " + common
	case wizard.StateAuditReport:
		if m.fullReport {
			return "↑/↓ scroll • d download report • esc back to summary • " + common
		}
		return "f view full report • d download report • esc back to dashboard • " + common
	}
	return common
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Product Audit Tool") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Access the audit system via Admin Dashboard or Merchant Login") + "\n\n")

	adminTab := m.styles.TabOff.Render("Admin Dashboard")
	merchantTab := m.styles.TabOff.Render("Merchant Login")
	if m.loginTab == loginTabAdmin {
		adminTab = m.styles.TabOn.Render("Admin Dashboard")
	} else {
		merchantTab = m.styles.TabOn.Render("Merchant Login")
	}
	b.WriteString(adminTab + " " + merchantTab + "\n\n")

	if m.loginTab == loginTabAdmin {
		b.WriteString(m.styles.Bold.Render("Merchant ID (MID)") + "\n")
		b.WriteString(m.midInput.View() + "\n")
	} else {
		b.WriteString(m.styles.Bold.Render("Email") + "\n")
		b.WriteString(m.emailInput.View() + "\n\n")
		b.WriteString(m.styles.Bold.Render("Password") + "\n")
		b.WriteString(m.passwordInput.View() + "\n")
	}

	demo := fmt.Sprintf("Demo Credentials:\nAdmin: %s\nMerchant: %s",
		strings.Join(m.session.Directory().DemoIDs(), " or "),
		strings.Join(m.session.Directory().DemoEmails(), " or "))
	b.WriteString("\n" + m.styles.InfoBox.Render(demo))
	return b.String()
}

func (m Model) viewIdentity() string {
	parent := m.session.Parent()
	n := len(parent.Children)
	word := "MIDs"
	if n == 1 {
		word = "MID"
	}
	intro := fmt.Sprintf("Select the MID you want to audit. %d %s available under this account.", n, word)
	return m.styles.Subtitle.Render(intro) + "\n\n" + m.identityList.View()
}

func (m Model) viewDashboard() string {
	mc := m.session.Merchant()
	var b strings.Builder

	info := fmt.Sprintf("Company: %s\nMerchant ID: %s\nEmail: %s\nAccount Manager: %s (%s)",
		mc.CompanyName, mc.ID, mc.Email, mc.AccountManager.Name, mc.AccountManager.Email)
	b.WriteString(m.styles.Card.Render(m.styles.Bold.Render("Merchant Information")+"\n"+info) + "\n\n")

	b.WriteString(m.styles.Bold.Render("Available Features") + "\n")
	b.WriteString(m.styles.Success.Render(strings.Join(mc.AvailableFeatures, " • ")) + "\n\n")

	b.WriteString(m.styles.Title.Render("Available Products for Audit") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Select a product to begin the audit process. Missing features will be highlighted.") + "\n\n")

	for i, p := range mc.Products {
		pct := features.ReadinessPercent(p.RequiredFeatures, mc.AvailableFeatures)
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Selected.Render("❯ ")
		}
		name := p.Name
		if i == m.cursor {
			name = m.styles.Selected.Render(name)
		}
		b.WriteString(fmt.Sprintf("%s%s — %s\n", cursor, name, m.styles.Muted.Render(p.Description)))
		b.WriteString(fmt.Sprintf("   Feature Readiness: %s  %s\n",
			m.styles.ReadinessStyle(pct).Render(fmt.Sprintf("%d%%", pct)),
			m.progress.ViewAs(float64(pct)/100)))

		var enabled, missing []string
		for _, f := range p.RequiredFeatures {
			if mc.FeatureEnabled(f) {
				enabled = append(enabled, f)
			} else {
				missing = append(missing, f)
			}
		}
		if len(enabled) > 0 {
			b.WriteString("   " + m.styles.Success.Render("✓ "+strings.Join(enabled, ", ")) + "\n")
		}
		if len(missing) > 0 {
			plural := ""
			if len(missing) > 1 {
				plural = "s"
			}
			b.WriteString("   " + m.styles.Error.Render(fmt.Sprintf("%d feature%s missing: %s",
				len(missing), plural, strings.Join(missing, ", "))) + "\n")
			if m.session.RequestRaised(p.ID) {
				b.WriteString("   " + m.styles.Success.Render("✓ Request Raised") + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewOverview() string {
	p := m.session.Product()
	mc := m.session.Merchant()
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(p.Name+" Audit Overview") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Review product requirements and start the audit process") + "\n\n")
	b.WriteString(m.styles.Bold.Render("Product Description") + "\n")
	b.WriteString(p.Description + "\n\n")

	var enabled []string
	for _, f := range p.RequiredFeatures {
		if mc.FeatureEnabled(f) {
			enabled = append(enabled, f)
		}
	}
	if len(enabled) > 0 {
		b.WriteString(m.styles.Bold.Render("Available Features") + "\n")
		b.WriteString(m.styles.Success.Render(strings.Join(enabled, " • ")) + "\n\n")
	}

	b.WriteString(m.missingFeatureCallout())

	if m.session.Track() == wizard.TrackMerchant {
		b.WriteString(m.styles.Bold.Render("Enter "+p.IdentifierLabel) + "\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Provide the %s to start the audit process",
			strings.ToLower(p.IdentifierLabel))) + "\n")
		b.WriteString(m.identifierInput.View() + "\n\n")
		b.WriteString(m.demoIdentifierBox())
	}
	return b.String()
}

func (m Model) missingFeatureCallout() string {
	gaps := m.session.Gaps()
	if len(gaps) == 0 {
		return ""
	}
	plural := ""
	if len(gaps) > 1 {
		plural = "s"
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("%d feature%s missing", len(gaps), plural))
	for _, g := range gaps {
		lines = append(lines, fmt.Sprintf("• %s (%s Impact): %s", g.Feature, g.Impact, g.Description))
	}
	return m.styles.ErrorBox.Render(strings.Join(lines, "\n")) + "\n\n"
}

func (m Model) demoIdentifierBox() string {
	demo := fmt.Sprintf("Demo Identifiers:\n%s\nFailed Payments: %s",
		strings.Join(m.session.Audits().Examples(), " • "),
		strings.Join(m.session.Audits().FailureExamples(), " • "))
	return m.styles.InfoBox.Render(demo)
}

func (m Model) viewIdentifier() string {
	p := m.session.Product()
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Enter "+p.IdentifierLabel) + "\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Provide the %s to fetch audit details",
		strings.ToLower(p.IdentifierLabel))) + "\n\n")
	b.WriteString(m.identifierInput.View() + "\n\n")
	b.WriteString(m.demoIdentifierBox())
	return b.String()
}

func (m Model) viewProcessing() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Processing Audit") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Please wait while we process your audit request...") + "\n\n")
	b.WriteString(m.spinner.View() + " Analyzing transaction data and generating audit report...\n\n")
	b.WriteString(m.progress.ViewAs(m.procPct) + "\n\n")
	b.WriteString(m.styles.Muted.Render("This usually takes about 10 seconds"))
	return b.String()
}

func (m Model) recordSummary() string {
	r := m.session.Record()
	var lines []string
	lines = append(lines, "Identifier: "+r.Identifier)
	lines = append(lines, "Status: "+string(r.Status))
	if r.Amount > 0 {
		lines = append(lines, fmt.Sprintf("Amount: %s %.2f", r.Currency, r.Amount))
	}
	lines = append(lines, "Timestamp: "+r.Timestamp)
	return strings.Join(lines, "\n")
}

func (m Model) metadataLines() string {
	r := m.session.Record()
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, r.MetaString(k)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewValidation() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("✓ Validation Successful") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Details fetched for "+m.session.Record().Identifier) + "\n\n")
	b.WriteString(m.styles.Card.Render(m.recordSummary()) + "\n\n")
	b.WriteString(m.styles.Bold.Render("Metadata") + "\n")
	b.WriteString(m.metadataLines() + "\n")
	return b.String()
}

func (m Model) viewFailure() string {
	r := m.session.Record()
	f := r.Failure
	var b strings.Builder

	b.WriteString(m.styles.Error.Render("✗ Payment Failed") + "\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("The payment identifier %s is in a failed state", r.Identifier)) + "\n\n")
	b.WriteString(m.styles.Card.Render(m.recordSummary()) + "\n\n")

	if f != nil {
		b.WriteString(m.styles.Bold.Render("Error Code") + "\n")
		b.WriteString(f.Code + "\n\n")
		b.WriteString(m.styles.Bold.Render("Reason") + "\n")
		b.WriteString(f.Reason + "\n\n")
		b.WriteString(m.styles.Bold.Render("Description") + "\n")
		b.WriteString(f.Description + "\n\n")
		b.WriteString(m.styles.Bold.Render("Recommended Next Steps") + "\n")
		for i, step := range f.NextSteps {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Bold.Render("Payment Metadata") + "\n")
	b.WriteString(m.metadataLines() + "\n\n")

	help := fmt.Sprintf("Need Help?\nIf you need assistance resolving this payment failure, please contact your account manager at %s",
		m.session.Merchant().AccountManager.Email)
	b.WriteString(m.styles.WarnBox.Render(help))
	return b.String()
}

func (m Model) viewGenerating() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Generating Audit Checklist") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Auto-populating checklist based on fetched audit details and product requirements") + "\n\n")
	b.WriteString(m.spinner.View() + " Analyzing audit data and generating checklist...")
	return b.String()
}

func (m Model) statusBadge(st checklist.Status) string {
	switch st {
	case checklist.StatusImplemented:
		return m.styles.BadgeImplemented.Render(st.Label())
	case checklist.StatusNotImplemented:
		return m.styles.BadgeNotImplemented.Render(st.Label())
	case checklist.StatusRecommended:
		return m.styles.BadgeRecommended.Render(st.Label())
	}
	return m.styles.BadgeNeutral.Render(st.Label())
}

func (m Model) tallyLine() string {
	t := checklist.Count(m.session.Checklist())
	return fmt.Sprintf("%s  %s  %s",
		m.styles.Success.Render(fmt.Sprintf("%d Implemented", t.Implemented)),
		m.styles.Error.Render(fmt.Sprintf("%d Not Implemented", t.NotImplemented)),
		m.styles.Warning.Render(fmt.Sprintf("%d Recommended", t.Recommended)))
}

// checklistContent renders the generated entries for the shared viewport.
func (m Model) checklistContent() string {
	var b strings.Builder
	for _, e := range m.session.Checklist() {
		b.WriteString(fmt.Sprintf("%s %s  %s\n", m.statusBadge(e.Status), e.Requirement,
			m.styles.Muted.Render("["+e.Category+"]")))
		if e.Explanation != "" {
			b.WriteString("  " + m.styles.Muted.Render(e.Explanation) + "\n")
		}
		if e.Suggestion != "" {
			label := "Recommendation"
			if e.Status == checklist.StatusNotImplemented {
				label = "Action Required"
			}
			b.WriteString("  " + m.styles.Info.Render(label+": "+e.Suggestion) + "\n")
		}
		if e.AutoDerived {
			b.WriteString("  " + m.styles.Muted.Render("(Auto-populated from audit data)") + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) fullReportContent() string {
	md := report.BuildMarkdown(m.reportInput())
	if m.renderer != nil {
		if out, err := m.renderer.Render(md); err == nil {
			return out
		}
	}
	return md
}

func (m Model) viewChecklist() string {
	entries := m.session.Checklist()
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Generated Checklist (%d items)", len(entries))) + "\n")
	b.WriteString(m.tallyLine() + "\n\n")
	b.WriteString(m.viewport.View())
	return b.String()
}

func (m Model) viewNotify() string {
	mc := m.session.Merchant()
	recipients := report.Recipients(m.session.Track(), *mc)
	var b strings.Builder

	if m.session.ReportSent() {
		b.WriteString(m.styles.Success.Render("✓ Audit Report Sent Successfully!") + "\n\n")
		b.WriteString(m.styles.Bold.Render("Email Recipients:") + "\n")
		for _, r := range recipients {
			b.WriteString(fmt.Sprintf("• %s (%s)\n", r.Name, r.Email))
		}
		if m.messageID != "" {
			b.WriteString("\n" + m.styles.Muted.Render("Message ID: "+m.messageID))
		}
		return b.String()
	}

	b.WriteString(m.styles.Title.Render("Email Confirmation") + "\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Send audit report to %s and %s",
		recipients[0].Label, recipients[1].Label)) + "\n\n")
	for _, r := range recipients {
		b.WriteString(fmt.Sprintf("%s: %s %s\n", m.styles.Bold.Render(r.Label), r.Name,
			m.styles.Muted.Render("("+r.Email+")")))
	}
	b.WriteString("\n" + m.styles.Bold.Render("Email Content") + "\n")
	b.WriteString(m.viewport.View())
	return b.String()
}

func (m Model) viewReport() string {
	if m.fullReport {
		return m.viewport.View()
	}

	var b strings.Builder
	b.WriteString(m.styles.Success.Render("✓ Audit Report Ready") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Your audit report has been generated successfully") + "\n\n")
	b.WriteString(m.tallyLine() + "\n\n")
	b.WriteString(m.styles.Bold.Render("Audit Checklist Preview") + "\n")
	b.WriteString(m.viewport.View())
	return b.String()
}
