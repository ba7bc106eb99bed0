package wizard

import (
	"errors"
	"fmt"
	"strings"

	"auditdesk/internal/auditrec"
	"auditdesk/internal/checklist"
	"auditdesk/internal/directory"
	"auditdesk/internal/features"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidTransition reports an operation attempted from a state that does
// not permit it. It indicates a caller bug, not a user mistake.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// Config wires the immutable data sources into a session. Tests substitute
// fixture-backed services without touching control logic.
type Config struct {
	Directory *directory.Service
	Audits    *auditrec.Service
	Logger    *zap.Logger
}

// Session is the state container for one wizard run. It owns all accumulated
// selections; there is no ambient global state. Not safe for concurrent use:
// user actions are discrete, serialized events.
type Session struct {
	id  string
	cfg Config

	state State
	track Track

	parent     *directory.Merchant
	merchant   *directory.Merchant
	product    *directory.Product
	gaps       []features.Gap
	identifier string
	record     *auditrec.Record
	entries    []checklist.Entry

	reportSent bool
	raised     map[string]bool
}

// NewSession creates a logged-out session. Nil services default to the
// embedded reference data; a nil logger defaults to a no-op.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Directory == nil {
		svc, err := directory.Default()
		if err != nil {
			return nil, err
		}
		cfg.Directory = svc
	}
	if cfg.Audits == nil {
		svc, err := auditrec.Default()
		if err != nil {
			return nil, err
		}
		cfg.Audits = svc
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		state:  StateLoggedOut,
		raised: make(map[string]bool),
	}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Directory exposes the merchant lookup service for demo-value hints.
func (s *Session) Directory() *directory.Service { return s.cfg.Directory }

// Audits exposes the audit lookup service for demo-value hints.
func (s *Session) Audits() *auditrec.Service { return s.cfg.Audits }

// State returns the current wizard screen.
func (s *Session) State() State { return s.state }

// Track returns the active login track; zero value until logged in.
func (s *Session) Track() Track { return s.track }

// Parent is the record matched at login, before any child selection.
func (s *Session) Parent() *directory.Merchant { return s.parent }

// Merchant is the active account all product work runs against.
func (s *Session) Merchant() *directory.Merchant { return s.merchant }

// Product is the selection under audit, nil outside the audit flow.
func (s *Session) Product() *directory.Product { return s.product }

// Gaps lists the missing features for the current merchant/product pairing.
func (s *Session) Gaps() []features.Gap { return s.gaps }

// Identifier returns the submitted audit identifier.
func (s *Session) Identifier() string { return s.identifier }

// Record returns the resolved audit record, nil before a successful lookup.
func (s *Session) Record() *auditrec.Record { return s.record }

// Checklist returns the generated entries, nil before generation.
func (s *Session) Checklist() []checklist.Entry { return s.entries }

// ReportSent reports whether the notification has been sent this audit.
func (s *Session) ReportSent() bool { return s.reportSent }

// RequestRaised reports whether a feature request was already raised for the
// product in this session.
func (s *Session) RequestRaised(productID string) bool { return s.raised[productID] }

// Login authenticates the admin track by merchant identifier. An empty or
// unknown identifier is a recoverable error; the state does not change.
func (s *Session) Login(mid string) error {
	if s.state != StateLoggedOut {
		return fmt.Errorf("%w: login from %s", ErrInvalidTransition, s.state)
	}
	if strings.TrimSpace(mid) == "" {
		return errors.New("please enter a valid MID")
	}
	m, err := s.cfg.Directory.Find(mid)
	if err != nil {
		return err
	}
	return s.admit(m, TrackAdmin)
}

// LoginWithEmail authenticates the merchant track. The password is required
// but never checked; this is demo authentication.
func (s *Session) LoginWithEmail(email, password string) error {
	if s.state != StateLoggedOut {
		return fmt.Errorf("%w: login from %s", ErrInvalidTransition, s.state)
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return errors.New("please enter both email and password")
	}
	m, err := s.cfg.Directory.FindByEmail(email)
	if err != nil {
		return err
	}
	return s.admit(m, TrackMerchant)
}

func (s *Session) admit(m directory.Merchant, track Track) error {
	s.track = track
	s.parent = &m
	ev := EventLoginDirect
	if m.HasChildren() {
		ev = EventLoginParent
	} else {
		s.merchant = &m
	}
	if err := s.apply(ev); err != nil {
		s.track = ""
		s.parent = nil
		s.merchant = nil
		return err
	}
	s.cfg.Logger.Info("session authenticated",
		zap.String("session", s.id),
		zap.String("mid", m.ID),
		zap.String("track", string(track)))
	return nil
}

// SelectChild promotes a sub-account into the active merchant.
func (s *Session) SelectChild(childID string) error {
	if s.state != StateSelectingIdentity {
		return fmt.Errorf("%w: select child from %s", ErrInvalidTransition, s.state)
	}
	c, ok := s.parent.Child(childID)
	if !ok {
		return fmt.Errorf("no merchant ID %s under this account", childID)
	}
	m := directory.FromChild(c)
	s.merchant = &m
	return s.apply(EventChildSelected)
}

// SelectProduct starts the audit flow for a catalog product and computes its
// feature gaps.
func (s *Session) SelectProduct(productID string) error {
	if s.state != StateDashboard {
		return fmt.Errorf("%w: select product from %s", ErrInvalidTransition, s.state)
	}
	p, ok := s.merchant.Product(productID)
	if !ok {
		return fmt.Errorf("no product %s in this catalog", productID)
	}
	s.product = &p
	s.gaps = features.ComputeGaps(p.RequiredFeatures, s.merchant.AvailableFeatures)
	return s.apply(EventProductSelected)
}

// Continue advances the admin overview to the identifier entry step.
func (s *Session) Continue() error {
	return s.apply(EventContinue)
}

// SubmitIdentifier validates the audit identifier and routes on the result.
// Admin sessions move to the validation (or failure) view; merchant sessions
// enter the opaque processing step. A miss leaves the state unchanged.
func (s *Session) SubmitIdentifier(identifier string) error {
	valid := (s.track == TrackAdmin && s.state == StateAuditIdentifier) ||
		(s.track == TrackMerchant && s.state == StateAuditOverview)
	if !valid {
		return fmt.Errorf("%w: submit identifier from %s", ErrInvalidTransition, s.state)
	}
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("please enter a valid %s", s.product.IdentifierLabel)
	}

	r, err := s.cfg.Audits.Find(identifier)
	if err != nil {
		s.cfg.Logger.Warn("audit lookup miss",
			zap.String("session", s.id),
			zap.String("identifier", identifier))
		return fmt.Errorf("invalid %s: %w", s.product.IdentifierLabel, err)
	}

	s.identifier = identifier
	s.record = &r
	s.reportSent = false

	if s.track == TrackMerchant {
		return s.apply(EventLookupSucceeded)
	}
	if r.Failed() {
		return s.apply(EventLookupFailed)
	}
	return s.apply(EventLookupSucceeded)
}

// FinishProcessing completes the merchant processing step, generating the
// checklist for the report view or routing to the failure view.
func (s *Session) FinishProcessing() error {
	if s.state != StateAuditProcessing {
		return fmt.Errorf("%w: finish processing from %s", ErrInvalidTransition, s.state)
	}
	if s.record.Failed() {
		return s.apply(EventProcessingFailed)
	}
	s.entries = checklist.Generate(*s.product, *s.record)
	return s.apply(EventProcessingDone)
}

// ConfirmValidation advances the admin validation view to checklist
// generation.
func (s *Session) ConfirmValidation() error {
	if err := s.apply(EventValidationConfirmed); err != nil {
		return err
	}
	s.entries = checklist.Generate(*s.product, *s.record)
	s.cfg.Logger.Info("checklist generated",
		zap.String("session", s.id),
		zap.String("product", s.product.ID),
		zap.Int("entries", len(s.entries)))
	return nil
}

// ConfirmChecklist advances to the notification step.
func (s *Session) ConfirmChecklist() error {
	return s.apply(EventChecklistConfirmed)
}

// MarkReportSent records that the notification went out. Viewing the
// confirmation again never resends.
func (s *Session) MarkReportSent() error {
	if s.state != StateAuditNotify {
		return fmt.Errorf("%w: send report from %s", ErrInvalidTransition, s.state)
	}
	s.reportSent = true
	return nil
}

// RaiseRequest records a feature-enablement request for a product on the
// dashboard. At most one request per product per session.
func (s *Session) RaiseRequest(productID string) error {
	if s.state != StateDashboard {
		return fmt.Errorf("%w: raise request from %s", ErrInvalidTransition, s.state)
	}
	if _, ok := s.merchant.Product(productID); !ok {
		return fmt.Errorf("no product %s in this catalog", productID)
	}
	if s.raised[productID] {
		return errors.New("a request for this product was already raised")
	}
	s.raised[productID] = true
	return nil
}

// Back steps to the previous screen, discarding exactly the state collected
// at the screen being left.
func (s *Session) Back() error {
	leaving := s.state
	if err := s.apply(EventBack); err != nil {
		return err
	}
	switch leaving {
	case StateAuditOverview:
		s.product = nil
		s.gaps = nil
	case StateAuditIdentifier:
		s.identifier = ""
	case StateAuditValidation:
		s.record = nil
	case StateAuditFailure:
		s.record = nil
		s.identifier = ""
	case StateAuditChecklist:
		s.entries = nil
	case StateAuditReport:
		s.product = nil
		s.gaps = nil
		s.record = nil
		s.identifier = ""
		s.entries = nil
	}
	return nil
}

// Logout resets the session to its initial value. Reachable from any state.
func (s *Session) Logout() {
	s.cfg.Logger.Info("session reset", zap.String("session", s.id), zap.String("from", s.state.String()))
	s.state = StateLoggedOut
	s.track = ""
	s.parent = nil
	s.merchant = nil
	s.product = nil
	s.gaps = nil
	s.identifier = ""
	s.record = nil
	s.entries = nil
	s.reportSent = false
	s.raised = make(map[string]bool)
}

func (s *Session) apply(ev Event) error {
	to, ok := next(s.track, s.state, ev)
	if !ok {
		return fmt.Errorf("%w: %s on %s (%s track)", ErrInvalidTransition, ev, s.state, s.track)
	}
	s.cfg.Logger.Debug("wizard transition",
		zap.String("session", s.id),
		zap.String("from", s.state.String()),
		zap.String("event", ev.String()),
		zap.String("to", to.String()))
	s.state = to
	return nil
}
