package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"auditdesk/cmd/auditdesk/ui"
	"auditdesk/internal/wizard"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, delays Delays) Model {
	t.Helper()
	session, err := wizard.NewSession(wizard.Config{})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	m := New(Options{
		Session: session,
		Styles:  ui.NewStyles(ui.LightTheme()),
		Delays:  delays,
		WorkDir: t.TempDir(),
	})
	return step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

// step feeds one message through Update and, in fast mode, drains the
// resulting zero-delay operation messages so the session settles.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	mdl, cmd := m.Update(msg)
	m = mdl.(Model)
	for cmd != nil {
		out := cmd()
		if _, ok := out.(opDoneMsg); !ok {
			break
		}
		mdl, cmd = m.Update(out)
		m = mdl.(Model)
	}
	return m
}

func keys(t *testing.T, m Model, input string) Model {
	t.Helper()
	return step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(input)})
}

func enter(t *testing.T, m Model) Model {
	t.Helper()
	return step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func esc(t *testing.T, m Model) Model {
	t.Helper()
	return step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
}

func adminAtDashboard(t *testing.T, m Model) Model {
	t.Helper()
	m = keys(t, m, "MID123456")
	m = enter(t, m)
	if m.session.State() != wizard.StateSelectingIdentity {
		t.Fatalf("after login: state %s", m.session.State())
	}
	m = enter(t, m) // first child
	if m.session.State() != wizard.StateDashboard {
		t.Fatalf("after child selection: state %s", m.session.State())
	}
	return m
}

func TestStartupResizeConfiguresWidgets(t *testing.T) {
	m := newTestModel(t, FastDelays())
	if !m.ready {
		t.Fatal("model not ready after the initial resize")
	}
	if !strings.Contains(m.View(), "Product Audit Tool") {
		t.Error("login view not rendered")
	}

	// The identity list must survive resizing both before and after it is
	// populated.
	m = keys(t, m, "MID123456")
	m = enter(t, m)
	if !strings.Contains(m.View(), "Available Merchant IDs") {
		t.Error("identity list not rendered")
	}
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 50})
	if m.session.State() != wizard.StateSelectingIdentity {
		t.Fatalf("state = %s", m.session.State())
	}
	if _, ok := m.identityList.SelectedItem().(childItem); !ok {
		t.Error("list selection lost after resize")
	}
}

func TestLoginEmptyMidShowsValidationError(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = enter(t, m)
	if m.errMsg != "Please enter a valid MID" {
		t.Errorf("errMsg = %q", m.errMsg)
	}
	if m.session.State() != wizard.StateLoggedOut {
		t.Errorf("state = %s", m.session.State())
	}
}

func TestLoginUnknownMid(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = keys(t, m, "MID000000")
	m = enter(t, m)
	if !strings.Contains(m.errMsg, "invalid MID") {
		t.Errorf("errMsg = %q", m.errMsg)
	}
	if m.session.State() != wizard.StateLoggedOut {
		t.Errorf("state = %s", m.session.State())
	}
}

func TestMerchantTabLogin(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = keys(t, m, "owner@techcorp.com")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = keys(t, m, "secret")
	m = enter(t, m)
	if m.session.State() != wizard.StateSelectingIdentity {
		t.Fatalf("state = %s", m.session.State())
	}
	if m.session.Track() != wizard.TrackMerchant {
		t.Errorf("track = %s", m.session.Track())
	}
}

func TestMerchantLoginMissingPassword(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = keys(t, m, "owner@techcorp.com")
	m = enter(t, m)
	if m.errMsg != "Please enter both email and password" {
		t.Errorf("errMsg = %q", m.errMsg)
	}
}

func TestBusyInputIsIgnored(t *testing.T) {
	m := newTestModel(t, DefaultDelays())
	m = keys(t, m, "MID123456")

	mdl, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mdl.(Model)
	if !m.busy {
		t.Fatal("expected busy while the login delay is pending")
	}

	m = keys(t, m, "XYZ")
	if got := m.midInput.Value(); got != "MID123456" {
		t.Errorf("input changed while busy: %q", got)
	}
	if m.session.State() != wizard.StateLoggedOut {
		t.Errorf("session advanced while busy: %s", m.session.State())
	}
}

func TestAdminWalkThroughNotification(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = adminAtDashboard(t, m)

	m = enter(t, m) // first product
	if m.session.State() != wizard.StateAuditOverview {
		t.Fatalf("state = %s", m.session.State())
	}
	m = enter(t, m) // continue to identifier entry
	if m.session.State() != wizard.StateAuditIdentifier {
		t.Fatalf("state = %s", m.session.State())
	}

	m = keys(t, m, "PAY_123456789")
	m = enter(t, m)
	if m.session.State() != wizard.StateAuditValidation {
		t.Fatalf("state = %s", m.session.State())
	}
	if !strings.Contains(m.View(), "Validation Successful") {
		t.Error("validation view missing title")
	}

	m = enter(t, m) // generate checklist
	if m.session.State() != wizard.StateAuditChecklist {
		t.Fatalf("state = %s", m.session.State())
	}
	if len(m.session.Checklist()) != 8 {
		t.Fatalf("checklist entries = %d", len(m.session.Checklist()))
	}

	m = enter(t, m) // proceed to email confirmation
	if m.session.State() != wizard.StateAuditNotify {
		t.Fatalf("state = %s", m.session.State())
	}
	if !strings.Contains(m.emailBody, "Dear Sarah Johnson,") {
		t.Error("email body not generated")
	}

	m = keys(t, m, "s")
	if !m.session.ReportSent() {
		t.Fatal("report not sent")
	}
	if !strings.Contains(m.View(), "Audit Report Sent Successfully!") {
		t.Error("sent confirmation missing")
	}

	// Repeated send keys must not produce a second delivery.
	first := m.messageID
	m = keys(t, m, "s")
	if m.messageID != first {
		t.Error("report resent on repeated keypress")
	}
}

func TestLookupMissKeepsState(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = adminAtDashboard(t, m)
	m = enter(t, m)
	m = enter(t, m)

	m = keys(t, m, "PAY_NOPE")
	m = enter(t, m)
	if m.session.State() != wizard.StateAuditIdentifier {
		t.Fatalf("state = %s", m.session.State())
	}
	if !strings.Contains(m.errMsg, "try PAY_123456789, TOK_987654321 or ORD_456789123 for demo") {
		t.Errorf("errMsg = %q", m.errMsg)
	}
}

func TestFailedPaymentRoutesToFailureView(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = adminAtDashboard(t, m)
	m = enter(t, m)
	m = enter(t, m)

	m = keys(t, m, "PAY_FAILED_001")
	m = enter(t, m)
	if m.session.State() != wizard.StateAuditFailure {
		t.Fatalf("state = %s", m.session.State())
	}
	view := m.View()
	if !strings.Contains(view, "BAD_REQUEST_ERROR") {
		t.Error("failure view missing error code")
	}
	if !strings.Contains(view, "Recommended Next Steps") {
		t.Error("failure view missing next steps")
	}

	m = esc(t, m) // try another payment
	if m.session.State() != wizard.StateAuditIdentifier {
		t.Fatalf("state after back = %s", m.session.State())
	}
}

func TestMerchantProcessingToReport(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = keys(t, m, "admin@ecommerceplus.com")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = keys(t, m, "demo")
	m = enter(t, m)
	m = enter(t, m) // single child
	m = enter(t, m) // only product

	m = keys(t, m, "PAY_123456789")
	m = enter(t, m)
	if m.session.State() != wizard.StateAuditReport {
		t.Fatalf("state = %s", m.session.State())
	}
	if !strings.Contains(m.View(), "Audit Report Ready") {
		t.Error("report summary missing title")
	}

	m = keys(t, m, "d")
	if !strings.Contains(m.notice, "Report saved to ") {
		t.Fatalf("notice = %q", m.notice)
	}
	path := strings.TrimPrefix(m.notice, "Report saved to ")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if !strings.HasPrefix(string(data), "AUDIT REPORT") {
		t.Error("download missing header")
	}
	if !strings.HasPrefix(filepath.Base(path), "audit-report-MID789012-") {
		t.Errorf("unexpected filename %q", filepath.Base(path))
	}

	m = keys(t, m, "f")
	if !m.fullReport {
		t.Fatal("full report view not toggled")
	}
	m = esc(t, m)
	if m.fullReport {
		t.Fatal("esc should return to the summary view")
	}

	m = esc(t, m) // back to dashboard
	if m.session.State() != wizard.StateDashboard {
		t.Fatalf("state = %s", m.session.State())
	}
}

func TestRaiseRequestFromDashboard(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = keys(t, m, "MID123456")
	m = enter(t, m)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown}) // EU division child
	m = enter(t, m)

	m = keys(t, m, "r")
	if !strings.Contains(m.notice, "Request raised for Payment Gateway") {
		t.Fatalf("notice = %q", m.notice)
	}
	if !m.session.RequestRaised("payment-gateway") {
		t.Error("session did not record the request")
	}

	m.notice = ""
	m = keys(t, m, "r")
	if m.notice != "" {
		t.Error("second request should be ignored")
	}
}

func TestLogoutResetsToLogin(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = adminAtDashboard(t, m)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.session.State() != wizard.StateLoggedOut {
		t.Fatalf("state = %s", m.session.State())
	}
	if m.midInput.Value() != "" {
		t.Error("MID input not cleared")
	}
	if !strings.Contains(m.View(), "Demo Credentials:") {
		t.Error("login view missing demo credentials")
	}
}

func TestDashboardViewShowsReadiness(t *testing.T) {
	m := newTestModel(t, FastDelays())
	m = keys(t, m, "MID123456")
	m = enter(t, m)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = enter(t, m)

	view := m.View()
	if !strings.Contains(view, "25%") {
		t.Error("EU division payment gateway readiness should be 25%")
	}
	if !strings.Contains(view, "3 features missing") {
		t.Error("missing feature count absent")
	}
}
