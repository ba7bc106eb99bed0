// Package wizard drives the audit workflow as an explicit finite-state
// machine. Screen sequencing is a declared transition table over
// (track, state, event), not conditionals on a step counter, so every
// transition is independently testable.
package wizard

import "fmt"

// Track selects which step sequence a session follows. Fixed at login by
// which path authenticated the user.
type Track string

const (
	// TrackAdmin exposes explicit validation, checklist and notification
	// steps.
	TrackAdmin Track = "admin"
	// TrackMerchant collapses identifier entry, a fixed processing delay
	// and report viewing into fewer steps.
	TrackMerchant Track = "merchant"

	// trackAny matches either track in the transition table.
	trackAny Track = "*"
)

// State is one wizard screen. Closed set.
type State int

const (
	StateLoggedOut State = iota
	StateSelectingIdentity
	StateDashboard
	StateAuditOverview
	StateAuditIdentifier // admin: dedicated identifier entry step
	StateAuditProcessing // merchant: opaque fixed-delay processing
	StateAuditValidation // admin: validation success details
	StateAuditFailure
	StateAuditReport // merchant: report summary / full view
	StateAuditChecklist
	StateAuditNotify
)

var stateNames = map[State]string{
	StateLoggedOut:         "logged-out",
	StateSelectingIdentity: "selecting-identity",
	StateDashboard:         "dashboard",
	StateAuditOverview:     "audit-overview",
	StateAuditIdentifier:   "audit-identifier",
	StateAuditProcessing:   "audit-processing",
	StateAuditValidation:   "audit-validation",
	StateAuditFailure:      "audit-failure",
	StateAuditReport:       "audit-report",
	StateAuditChecklist:    "audit-checklist",
	StateAuditNotify:       "audit-notify",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event triggers a transition. Guarded outcomes (children vs none, failed vs
// successful lookup) are distinct events so the table itself stays pure.
type Event int

const (
	EventLoginParent Event = iota // login matched a record with children
	EventLoginDirect              // login matched a record without children
	EventChildSelected
	EventProductSelected
	EventContinue // overview confirmed (admin)
	EventLookupSucceeded
	EventLookupFailed // record resolved with failed status
	EventProcessingDone
	EventProcessingFailed
	EventValidationConfirmed
	EventChecklistConfirmed
	EventBack
)

var eventNames = map[Event]string{
	EventLoginParent:         "login-parent",
	EventLoginDirect:         "login-direct",
	EventChildSelected:       "child-selected",
	EventProductSelected:     "product-selected",
	EventContinue:            "continue",
	EventLookupSucceeded:     "lookup-succeeded",
	EventLookupFailed:        "lookup-failed",
	EventProcessingDone:      "processing-done",
	EventProcessingFailed:    "processing-failed",
	EventValidationConfirmed: "validation-confirmed",
	EventChecklistConfirmed:  "checklist-confirmed",
	EventBack:                "back",
}

func (e Event) String() string {
	if n, ok := eventNames[e]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type transitionKey struct {
	track Track
	from  State
	ev    Event
}

// transitions is the full step map for both tracks. Logout is handled
// outside the table: it is reachable from every state and resets the
// session rather than stepping it.
var transitions = map[transitionKey]State{
	{trackAny, StateLoggedOut, EventLoginParent}: StateSelectingIdentity,
	{trackAny, StateLoggedOut, EventLoginDirect}: StateDashboard,

	{trackAny, StateSelectingIdentity, EventChildSelected}: StateDashboard,

	{trackAny, StateDashboard, EventProductSelected}: StateAuditOverview,

	{TrackAdmin, StateAuditOverview, EventContinue}: StateAuditIdentifier,
	{TrackAdmin, StateAuditOverview, EventBack}:     StateDashboard,

	// Merchant submits the identifier inline on the overview step.
	{TrackMerchant, StateAuditOverview, EventLookupSucceeded}: StateAuditProcessing,
	{TrackMerchant, StateAuditOverview, EventBack}:            StateDashboard,

	{TrackAdmin, StateAuditIdentifier, EventLookupSucceeded}: StateAuditValidation,
	{TrackAdmin, StateAuditIdentifier, EventLookupFailed}:    StateAuditFailure,
	{TrackAdmin, StateAuditIdentifier, EventBack}:            StateAuditOverview,

	{TrackMerchant, StateAuditProcessing, EventProcessingDone}:   StateAuditReport,
	{TrackMerchant, StateAuditProcessing, EventProcessingFailed}: StateAuditFailure,

	{TrackAdmin, StateAuditValidation, EventValidationConfirmed}: StateAuditChecklist,
	{TrackAdmin, StateAuditValidation, EventBack}:                StateAuditIdentifier,

	{TrackAdmin, StateAuditFailure, EventBack}:    StateAuditIdentifier,
	{TrackMerchant, StateAuditFailure, EventBack}: StateAuditOverview,

	{TrackMerchant, StateAuditReport, EventBack}: StateDashboard,

	{TrackAdmin, StateAuditChecklist, EventChecklistConfirmed}: StateAuditNotify,
	{TrackAdmin, StateAuditChecklist, EventBack}:               StateAuditValidation,

	{TrackAdmin, StateAuditNotify, EventBack}: StateAuditChecklist,
}

// next resolves one transition, preferring a track-specific entry.
func next(track Track, from State, ev Event) (State, bool) {
	if to, ok := transitions[transitionKey{track, from, ev}]; ok {
		return to, true
	}
	to, ok := transitions[transitionKey{trackAny, from, ev}]
	return to, ok
}
