package eventbus

import "testing"

func TestAnalysisChannel(t *testing.T) {
	if got := AnalysisChannel(42); got != "analysis_completed:user:42" {
		t.Errorf("AnalysisChannel(42) = %q, want analysis_completed:user:42", got)
	}
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	if _, err := NewClient("not a valid redis url"); err == nil {
		t.Error("expected an error for a malformed broker URL")
	}
}

func TestNewClientAcceptsValidURL(t *testing.T) {
	client, err := NewClient("redis://localhost:6379/0")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client == nil {
		t.Error("expected a non-nil client")
	}
}
