package services

import "testing"

func TestOpeningBookContains(t *testing.T) {
	obs := NewOpeningBookService()

	if !obs.Contains("E2E4") {
		t.Error("expected e2e4 to be recognized regardless of case")
	}
	if obs.Contains("a1h8") {
		t.Error("expected an unrecognized move to return false")
	}
}

func TestOpeningBookIsOpeningPhase(t *testing.T) {
	obs := NewOpeningBookService()

	if !obs.IsOpeningPhase(19) {
		t.Error("ply 19 should still be opening phase")
	}
	if obs.IsOpeningPhase(20) {
		t.Error("ply 20 should no longer be opening phase")
	}
}
