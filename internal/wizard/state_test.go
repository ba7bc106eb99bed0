package wizard

import "testing"

func TestNextPrefersTrackSpecificEntry(t *testing.T) {
	to, ok := next(TrackAdmin, StateAuditOverview, EventContinue)
	if !ok || to != StateAuditIdentifier {
		t.Fatalf("admin overview continue = %v, %v", to, ok)
	}
	if _, ok := next(TrackMerchant, StateAuditOverview, EventContinue); ok {
		t.Fatalf("merchant track must not have a dedicated identifier step")
	}
}

func TestNextWildcardFallback(t *testing.T) {
	for _, track := range []Track{TrackAdmin, TrackMerchant} {
		to, ok := next(track, StateLoggedOut, EventLoginDirect)
		if !ok || to != StateDashboard {
			t.Fatalf("%s login-direct = %v, %v", track, to, ok)
		}
	}
}

func TestNextRejectsUnknownTransition(t *testing.T) {
	if _, ok := next(TrackAdmin, StateDashboard, EventChecklistConfirmed); ok {
		t.Fatalf("dashboard must not accept checklist confirmation")
	}
}

func TestFailureBackDivergesByTrack(t *testing.T) {
	to, ok := next(TrackAdmin, StateAuditFailure, EventBack)
	if !ok || to != StateAuditIdentifier {
		t.Fatalf("admin failure back = %v, %v", to, ok)
	}
	to, ok = next(TrackMerchant, StateAuditFailure, EventBack)
	if !ok || to != StateAuditOverview {
		t.Fatalf("merchant failure back = %v, %v", to, ok)
	}
}
