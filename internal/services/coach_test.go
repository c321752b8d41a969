package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCommentOnDisabled(t *testing.T) {
	c := NewCoachService(CoachConfig{Enabled: false}, nil)
	if got := c.CommentOn(context.Background(), 0, "fen", "e2e4", "blunder", 10); got != nil {
		t.Errorf("expected nil commentary when disabled, got %v", *got)
	}
}

func TestCommentOnCapReached(t *testing.T) {
	c := NewCoachService(CoachConfig{Enabled: true, Endpoint: "http://unused"}, nil)
	if got := c.CommentOn(context.Background(), coachMaxPerGame, "fen", "e2e4", "blunder", 10); got != nil {
		t.Errorf("expected nil commentary once the per-game cap is reached, got %v", *got)
	}
}

func TestCommentOnSkipsBookMoves(t *testing.T) {
	obs := NewOpeningBookService()
	c := NewCoachService(CoachConfig{Enabled: true, Endpoint: "http://unused"}, obs)
	if got := c.CommentOn(context.Background(), 0, "fen", "e2e4", "blunder", 1); got != nil {
		t.Errorf("expected nil commentary for a known opening-book move, got %v", *got)
	}
}

func TestCommentOnSkipsNonNotableMoves(t *testing.T) {
	c := NewCoachService(CoachConfig{Enabled: true, Endpoint: "http://unused"}, nil)
	for _, classification := range []string{"best", "excellent", "good"} {
		if got := c.CommentOn(context.Background(), 0, "fen", "a1h8", classification, 30); got != nil {
			t.Errorf("classification %q should not be narrated, got %v", classification, *got)
		}
	}
}

func TestCommentOnCallsExternalAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing or wrong Authorization header: %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(coachResponse{Commentary: "this loses material"})
	}))
	defer srv.Close()

	c := NewCoachService(CoachConfig{Enabled: true, Provider: "external_api", Endpoint: srv.URL, APIKey: "secret"}, nil)
	got := c.CommentOn(context.Background(), 0, "fen", "a1h8", "blunder", 30)
	if got == nil || *got != "this loses material" {
		t.Errorf("CommentOn = %v, want \"this loses material\"", got)
	}
}

func TestCommentOnSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCoachService(CoachConfig{Enabled: true, Provider: "external_api", Endpoint: srv.URL}, nil)
	if got := c.CommentOn(context.Background(), 0, "fen", "a1h8", "blunder", 30); got != nil {
		t.Errorf("expected nil commentary on a failed call, got %v", *got)
	}
}
