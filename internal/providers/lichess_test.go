package providers

import (
	"io"
	"strings"
	"testing"
)

func TestSplitPGNGames(t *testing.T) {
	raw := `[Event "Rated Blitz game"]
[Site "https://lichess.org/abc12345"]
[White "alice"]
[Black "bob"]
[Result "1-0"]

1. e4 e5 2. Nf3 1-0

[Event "Rated Blitz game"]
[Site "https://lichess.org/def67890"]
[White "bob"]
[Black "alice"]
[Result "0-1"]

1. d4 d5 0-1
`
	games := splitPGNGames(io.NopCloser(strings.NewReader(raw)))
	if len(games) != 2 {
		t.Fatalf("splitPGNGames returned %d games, want 2", len(games))
	}
	if !strings.Contains(games[0], "abc12345") || !strings.Contains(games[0], "1. e4 e5") {
		t.Errorf("first game missing expected content: %q", games[0])
	}
	if !strings.Contains(games[1], "def67890") || !strings.Contains(games[1], "1. d4 d5") {
		t.Errorf("second game missing expected content: %q", games[1])
	}
}

func TestParseLichessHeaders(t *testing.T) {
	pgn := `[Event "Rated Blitz game"]
[White "alice"]
[Black "bob"]
[UTCDate "2024.03.15"]

1. e4 e5 1-0
`
	h := parseLichessHeaders(pgn)
	want := map[string]string{
		"Event":   "Rated Blitz game",
		"White":   "alice",
		"Black":   "bob",
		"UTCDate": "2024.03.15",
	}
	for k, v := range want {
		if h[k] != v {
			t.Errorf("header %q = %q, want %q", k, h[k], v)
		}
	}
}

func TestExtractLichessGameID(t *testing.T) {
	if got := extractLichessGameID("https://lichess.org/abc12345"); got != "abc12345" {
		t.Errorf("extractLichessGameID = %q, want abc12345", got)
	}
}

func TestNormalizeLichessGame(t *testing.T) {
	headers := map[string]string{
		"Event":   "Rated Blitz game",
		"Site":    "https://lichess.org/abc12345",
		"White":   "alice",
		"Black":   "bob",
		"Result":  "1-0",
		"UTCDate": "2024.03.15",
	}
	pgn := "1. e4 e5 1-0"

	game, ok := normalizeLichessGame("alice", pgn, headers)
	if !ok {
		t.Fatal("normalizeLichessGame returned ok=false for a valid game")
	}
	if game.ProviderID != "abc12345" {
		t.Errorf("ProviderID = %q, want abc12345", game.ProviderID)
	}
	if game.PlayedAs != "white" {
		t.Errorf("PlayedAs = %q, want white", game.PlayedAs)
	}
	if game.Result != "win" {
		t.Errorf("Result = %q, want win", game.Result)
	}

	if _, ok := normalizeLichessGame("alice", pgn, map[string]string{"Black": "bob"}); ok {
		t.Error("normalizeLichessGame should reject headers missing White")
	}
}

func TestPick2(t *testing.T) {
	if got := pick2(true, "a", "b"); got != "a" {
		t.Errorf("pick2(true, a, b) = %q, want a", got)
	}
	if got := pick2(false, "a", "b"); got != "b" {
		t.Errorf("pick2(false, a, b) = %q, want b", got)
	}
}
