// Package tui implements the interactive audit wizard interface. The
// functionality is split across two files:
//   - model.go: Types, Init, Update loop (this file)
//   - view.go: Rendering functions
//
// Every simulated operation follows the same shape: the key handler
// validates input, schedules a delayed opDoneMsg and marks the model busy;
// the session only advances when the message arrives. While busy all input
// except Ctrl+C is ignored, so at most one operation is ever outstanding.
package tui

import (
	"fmt"
	"strings"
	"time"

	"auditdesk/cmd/auditdesk/ui"
	"auditdesk/internal/directory"
	"auditdesk/internal/features"
	"auditdesk/internal/report"
	"auditdesk/internal/wizard"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// Delays configures the simulated latency per operation.
type Delays struct {
	Login      time.Duration
	Lookup     time.Duration
	Processing time.Duration
	Checklist  time.Duration
	Send       time.Duration
	Request    time.Duration
}

// DefaultDelays returns the reference timings.
func DefaultDelays() Delays {
	return Delays{
		Login:      time.Second,
		Lookup:     2 * time.Second,
		Processing: 10 * time.Second,
		Checklist:  3 * time.Second,
		Send:       2 * time.Second,
		Request:    1500 * time.Millisecond,
	}
}

// FastDelays zeroes all timings for --fast runs and tests.
func FastDelays() Delays { return Delays{} }

// opKind identifies an in-flight simulated operation.
type opKind int

const (
	opNone opKind = iota
	opLoginAdmin
	opLoginMerchant
	opLookup
	opChecklist
	opSend
	opRequest
)

// opDoneMsg delivers a finished operation back to Update. The session is
// only ever mutated on the Update goroutine.
type opDoneMsg struct {
	kind opKind
	a, b string
}

// procTickMsg drives the processing progress bar.
type procTickMsg time.Time

const (
	loginTabAdmin = iota
	loginTabMerchant
)

// childItem adapts a sub-account for the identity selection list.
type childItem struct {
	child directory.ChildAccount
}

func (i childItem) Title() string { return i.child.ID }
func (i childItem) Description() string {
	return fmt.Sprintf("%s • MCC %s • %s", i.child.BusinessName, i.child.MCC, i.child.OwnerEmail)
}
func (i childItem) FilterValue() string { return i.child.ID + " " + i.child.BusinessName }

// Options configures a Model.
type Options struct {
	Session *wizard.Session
	Styles  ui.Styles
	Delays  Delays
	Logger  *zap.Logger
	// WorkDir receives downloaded reports. Defaults to the working
	// directory.
	WorkDir string
}

// Model is the bubbletea model for the whole wizard.
type Model struct {
	session *wizard.Session
	styles  ui.Styles
	delays  Delays
	log     *zap.Logger
	sender  *report.Sender
	workDir string
	now     func() time.Time

	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	// login page
	loginTab      int
	midInput      textinput.Model
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int

	identityList    list.Model
	identifierInput textinput.Model

	spinner  spinner.Model
	progress progress.Model
	viewport viewport.Model

	// processing page
	procStart time.Time
	procPct   float64

	// dashboard
	cursor int

	// notify / report pages
	emailBody  string
	auditTime  time.Time
	messageID  string
	fullReport bool

	busy    bool
	pending opKind
	errMsg  string
	notice  string
}

// New assembles the wizard interface around a session.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}

	mid := textinput.New()
	mid.Placeholder = "Enter MID (e.g., MID123456)"
	mid.CharLimit = 64
	mid.Width = 40
	mid.Focus()

	email := textinput.New()
	email.Placeholder = "Enter your email"
	email.CharLimit = 128
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "Enter your password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	identifier := textinput.New()
	identifier.CharLimit = 64
	identifier.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	li := list.New(nil, list.NewDefaultDelegate(), 0, 14)
	li.Title = "Available Merchant IDs"
	li.SetShowStatusBar(false)
	li.SetFilteringEnabled(false)
	li.SetShowHelp(false)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(96),
	)
	if err != nil {
		// Rendering falls back to raw markdown.
		renderer = nil
	}

	return Model{
		session:         opts.Session,
		styles:          opts.Styles,
		delays:          opts.Delays,
		log:             opts.Logger,
		sender:          report.NewSender(opts.Logger),
		workDir:         opts.WorkDir,
		now:             time.Now,
		renderer:        renderer,
		midInput:        mid,
		emailInput:      email,
		passwordInput:   password,
		identityList:    li,
		identifierInput: identifier,
		spinner:         sp,
		progress:        progress.New(progress.WithDefaultGradient()),
		viewport:        viewport.New(80, 16),
	}
}

// Run starts the program.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.identityList.SetSize(msg.Width-4, msg.Height-8)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 12
		if m.viewport.Height < 5 {
			m.viewport.Height = 5
		}
		m.log.Debug("resize", zap.Int("width", msg.Width), zap.Int("height", msg.Height))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy || m.session.State() == wizard.StateAuditProcessing {
			return m, cmd
		}
		return m, nil

	case procTickMsg:
		return m.tickProcessing()

	case opDoneMsg:
		return m.completeOp(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// schedule starts a simulated operation. Input stays disabled until the
// opDoneMsg arrives.
func (m *Model) schedule(kind opKind, a, b string, d time.Duration) tea.Cmd {
	m.busy = true
	m.pending = kind
	m.errMsg = ""
	m.notice = ""
	done := opDoneMsg{kind: kind, a: a, b: b}
	if d <= 0 {
		return func() tea.Msg { return done }
	}
	return tea.Batch(
		m.spinner.Tick,
		tea.Tick(d, func(time.Time) tea.Msg { return done }),
	)
}

func procTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return procTickMsg(t) })
}

func (m Model) tickProcessing() (tea.Model, tea.Cmd) {
	if m.session.State() != wizard.StateAuditProcessing {
		return m, nil
	}
	elapsed := m.now().Sub(m.procStart)
	if elapsed >= m.delays.Processing {
		return m.finishProcessing()
	}
	m.procPct = float64(elapsed) / float64(m.delays.Processing)
	return m, procTick()
}

func (m Model) finishProcessing() (tea.Model, tea.Cmd) {
	m.procPct = 1
	if err := m.session.FinishProcessing(); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	if m.session.State() == wizard.StateAuditReport {
		m.auditTime = m.now()
		m.fullReport = false
		m.viewport.SetContent(m.checklistContent())
		m.viewport.GotoTop()
	}
	return m, nil
}

func (m Model) completeOp(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.pending = opNone

	switch msg.kind {
	case opLoginAdmin:
		if err := m.session.Login(msg.a); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		return m.afterLogin()

	case opLoginMerchant:
		if err := m.session.LoginWithEmail(msg.a, msg.b); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		return m.afterLogin()

	case opLookup:
		if err := m.session.SubmitIdentifier(msg.a); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.identifierInput.Blur()
		if m.session.State() == wizard.StateAuditProcessing {
			if m.delays.Processing <= 0 {
				return m.finishProcessing()
			}
			m.procStart = m.now()
			m.procPct = 0
			return m, tea.Batch(m.spinner.Tick, procTick())
		}
		return m, nil

	case opChecklist:
		if err := m.session.ConfirmValidation(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.auditTime = m.now()
		m.viewport.SetContent(m.checklistContent())
		m.viewport.GotoTop()
		return m, nil

	case opSend:
		if err := m.session.MarkReportSent(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		in := m.reportInput()
		recipients := report.Recipients(m.session.Track(), in.Merchant)
		m.messageID = m.sender.Send(recipients, report.Subject(in), m.emailBody)
		return m, nil

	case opRequest:
		if err := m.session.RaiseRequest(msg.a); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		p, _ := m.session.Merchant().Product(msg.a)
		gaps := features.ComputeGaps(p.RequiredFeatures, m.session.Merchant().AvailableFeatures)
		names := make([]string, len(gaps))
		for i, g := range gaps {
			names[i] = g.Feature
		}
		m.notice = fmt.Sprintf(
			"Request raised for %s. A request has been created to enable: %s. The team will reach out shortly.",
			p.Name, strings.Join(names, ", "))
		return m, nil
	}

	return m, nil
}

func (m Model) afterLogin() (tea.Model, tea.Cmd) {
	switch m.session.State() {
	case wizard.StateSelectingIdentity:
		children := m.session.Parent().Children
		items := make([]list.Item, len(children))
		for i, c := range children {
			items[i] = childItem{child: c}
		}
		m.identityList.SetItems(items)
		m.identityList.Select(0)
	case wizard.StateDashboard:
		m.cursor = 0
	}
	return m, nil
}

// reportInput snapshots the session for rendering.
func (m Model) reportInput() report.Input {
	at := m.auditTime
	if at.IsZero() {
		at = m.now()
	}
	return report.Input{
		Merchant:   *m.session.Merchant(),
		Product:    *m.session.Product(),
		Identifier: m.session.Identifier(),
		Entries:    m.session.Checklist(),
		Gaps:       m.session.Gaps(),
		Now:        at,
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	// One outstanding operation at a time; everything else waits.
	if m.busy {
		return m, nil
	}
	if msg.Type == tea.KeyCtrlL && m.session.State() != wizard.StateLoggedOut {
		return m.logout()
	}

	switch m.session.State() {
	case wizard.StateLoggedOut:
		return m.keyLogin(msg)
	case wizard.StateSelectingIdentity:
		return m.keyIdentity(msg)
	case wizard.StateDashboard:
		return m.keyDashboard(msg)
	case wizard.StateAuditOverview:
		return m.keyOverview(msg)
	case wizard.StateAuditIdentifier:
		return m.keyIdentifier(msg)
	case wizard.StateAuditProcessing:
		return m, nil
	case wizard.StateAuditValidation:
		return m.keyValidation(msg)
	case wizard.StateAuditFailure:
		return m.keyFailure(msg)
	case wizard.StateAuditChecklist:
		return m.keyChecklist(msg)
	case wizard.StateAuditNotify:
		return m.keyNotify(msg)
	case wizard.StateAuditReport:
		return m.keyReport(msg)
	}
	return m, nil
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	m.session.Logout()
	m.errMsg = ""
	m.notice = ""
	m.messageID = ""
	m.emailBody = ""
	m.fullReport = false
	m.cursor = 0
	m.loginTab = loginTabAdmin
	m.loginFocus = 0
	m.midInput.Reset()
	m.emailInput.Reset()
	m.passwordInput.Reset()
	m.identifierInput.Reset()
	m.midInput.Focus()
	m.emailInput.Blur()
	m.passwordInput.Blur()
	return m, textinput.Blink
}

func (m Model) keyLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		if m.loginTab == loginTabAdmin {
			m.loginTab = loginTabMerchant
			m.loginFocus = 0
			m.midInput.Blur()
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.loginTab = loginTabAdmin
			m.midInput.Focus()
			m.emailInput.Blur()
			m.passwordInput.Blur()
		}
		m.errMsg = ""
		return m, textinput.Blink

	case tea.KeyUp, tea.KeyDown:
		if m.loginTab == loginTabMerchant {
			m.loginFocus = 1 - m.loginFocus
			if m.loginFocus == 0 {
				m.emailInput.Focus()
				m.passwordInput.Blur()
			} else {
				m.emailInput.Blur()
				m.passwordInput.Focus()
			}
			return m, textinput.Blink
		}
		return m, nil

	case tea.KeyEnter:
		if m.loginTab == loginTabAdmin {
			if strings.TrimSpace(m.midInput.Value()) == "" {
				m.errMsg = "Please enter a valid MID"
				return m, nil
			}
			cmd := m.schedule(opLoginAdmin, m.midInput.Value(), "", m.delays.Login)
			return m, cmd
		}
		if strings.TrimSpace(m.emailInput.Value()) == "" || m.passwordInput.Value() == "" {
			m.errMsg = "Please enter both email and password"
			return m, nil
		}
		cmd := m.schedule(opLoginMerchant, m.emailInput.Value(), m.passwordInput.Value(), m.delays.Login)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.loginTab == loginTabAdmin {
		m.midInput, cmd = m.midInput.Update(msg)
	} else if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m Model) keyIdentity(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		item, ok := m.identityList.SelectedItem().(childItem)
		if !ok {
			return m, nil
		}
		if err := m.session.SelectChild(item.child.ID); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.cursor = 0
		m.errMsg = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.identityList, cmd = m.identityList.Update(msg)
	return m, cmd
}

func (m Model) keyDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	products := m.session.Merchant().Products

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(products)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if len(products) == 0 {
			return m, nil
		}
		p := products[m.cursor]
		if err := m.session.SelectProduct(p.ID); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.notice = ""
		m.identifierInput.Reset()
		m.identifierInput.Placeholder = "Enter " + strings.ToLower(p.IdentifierLabel)
		if m.session.Track() == wizard.TrackMerchant {
			m.identifierInput.Focus()
			return m, textinput.Blink
		}
		return m, nil
	case "r":
		if len(products) == 0 {
			return m, nil
		}
		p := products[m.cursor]
		gaps := features.ComputeGaps(p.RequiredFeatures, m.session.Merchant().AvailableFeatures)
		if len(gaps) == 0 || m.session.RequestRaised(p.ID) {
			return m, nil
		}
		cmd := m.schedule(opRequest, p.ID, "", m.delays.Request)
		return m, cmd
	}
	return m, nil
}

func (m Model) keyOverview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return m.back()
	}

	if m.session.Track() == wizard.TrackAdmin {
		if msg.Type == tea.KeyEnter {
			if err := m.session.Continue(); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.identifierInput.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	// Merchant track submits the identifier straight from the overview.
	if msg.Type == tea.KeyEnter {
		return m.submitIdentifier()
	}
	var cmd tea.Cmd
	m.identifierInput, cmd = m.identifierInput.Update(msg)
	return m, cmd
}

func (m Model) keyIdentifier(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.back()
	case tea.KeyEnter:
		return m.submitIdentifier()
	}
	var cmd tea.Cmd
	m.identifierInput, cmd = m.identifierInput.Update(msg)
	return m, cmd
}

func (m Model) submitIdentifier() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.identifierInput.Value())
	if value == "" {
		m.errMsg = fmt.Sprintf("Please enter a valid %s", m.session.Product().IdentifierLabel)
		return m, nil
	}
	cmd := m.schedule(opLookup, value, "", m.delays.Lookup)
	return m, cmd
}

func (m Model) keyValidation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.back()
	case tea.KeyEnter:
		cmd := m.schedule(opChecklist, "", "", m.delays.Checklist)
		return m, cmd
	}
	return m, nil
}

func (m Model) keyFailure(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		return m.back()
	case "n":
		// Start New Audit resets the whole session, as the original full
		// page reload did.
		return m.logout()
	}
	return m, nil
}

func (m Model) keyChecklist(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.back()
	case tea.KeyEnter:
		if err := m.session.ConfirmChecklist(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.emailBody = report.BuildEmail(m.reportInput())
		m.viewport.SetContent(m.emailBody)
		m.viewport.GotoTop()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) keyNotify(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return m.back()
	}
	if !m.session.ReportSent() && (msg.Type == tea.KeyEnter || msg.String() == "s") {
		cmd := m.schedule(opSend, "", "", m.delays.Send)
		return m, cmd
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) keyReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fullReport {
		switch msg.Type {
		case tea.KeyEsc:
			m.fullReport = false
			m.viewport.SetContent(m.checklistContent())
			m.viewport.GotoTop()
			return m, nil
		}
		switch msg.String() {
		case "d":
			return m.downloadReport()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		return m.back()
	case "f", "enter":
		m.fullReport = true
		m.viewport.SetContent(m.fullReportContent())
		m.viewport.GotoTop()
		return m, nil
	case "d":
		return m.downloadReport()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) downloadReport() (tea.Model, tea.Cmd) {
	path, err := report.Save(m.workDir, m.reportInput())
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.notice = "Report saved to " + path
	m.log.Info("report downloaded", zap.String("path", path))
	return m, nil
}

func (m Model) back() (tea.Model, tea.Cmd) {
	if err := m.session.Back(); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.notice = ""
	m.fullReport = false
	switch m.session.State() {
	case wizard.StateAuditIdentifier, wizard.StateAuditOverview:
		m.identifierInput.Reset()
		if m.session.Track() == wizard.TrackMerchant || m.session.State() == wizard.StateAuditIdentifier {
			m.identifierInput.Focus()
			return m, textinput.Blink
		}
	case wizard.StateAuditChecklist:
		m.viewport.SetContent(m.checklistContent())
		m.viewport.GotoTop()
	}
	return m, nil
}
