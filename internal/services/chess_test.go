package services

import "testing"

const samplePGN = `[Event "Rated Blitz game"]
[Site "https://lichess.org/abc12345"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[WhiteElo "1800"]
[BlackElo "1750"]
[ECO "C20"]
[Opening "King's Pawn Game"]

1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0
`

func TestParsePGN(t *testing.T) {
	svc := NewChessService()
	parsed, err := svc.ParsePGN(samplePGN)
	if err != nil {
		t.Fatalf("ParsePGN returned error: %v", err)
	}

	if parsed.GameInfo.White != "alice" || parsed.GameInfo.Black != "bob" {
		t.Errorf("unexpected players: white=%q black=%q", parsed.GameInfo.White, parsed.GameInfo.Black)
	}
	if parsed.GameInfo.WhiteRating != 1800 || parsed.GameInfo.BlackRating != 1750 {
		t.Errorf("unexpected ratings: white=%d black=%d", parsed.GameInfo.WhiteRating, parsed.GameInfo.BlackRating)
	}
	if parsed.GameInfo.Result != "1-0" {
		t.Errorf("Result = %q, want 1-0", parsed.GameInfo.Result)
	}
	if parsed.TotalMoves != 7 {
		t.Errorf("TotalMoves = %d, want 7", parsed.TotalMoves)
	}
	if parsed.Moves[0].SAN != "e4" || !parsed.Moves[0].IsWhite {
		t.Errorf("first move = %+v, want white e4", parsed.Moves[0])
	}
	if parsed.Moves[0].FEN == "" {
		t.Error("expected a populated FEN for the first move")
	}
}

func TestParsePGNInvalid(t *testing.T) {
	svc := NewChessService()
	if _, err := svc.ParsePGN("this is not a pgn"); err == nil {
		t.Error("expected an error parsing malformed PGN")
	}
}

func TestValidateFEN(t *testing.T) {
	svc := NewChessService()
	if err := svc.ValidateFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"); err != nil {
		t.Errorf("expected the starting position FEN to validate, got %v", err)
	}
	if err := svc.ValidateFEN("not a fen"); err == nil {
		t.Error("expected an error for a malformed FEN")
	}
}

func TestParseHeaders(t *testing.T) {
	h := parseHeaders(samplePGN)
	if h["White"] != "alice" || h["ECO"] != "C20" {
		t.Errorf("parseHeaders = %+v, missing expected tags", h)
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault("", "fallback"); got != "fallback" {
		t.Errorf("orDefault(\"\", fallback) = %q, want fallback", got)
	}
	if got := orDefault("value", "fallback"); got != "value" {
		t.Errorf("orDefault(value, fallback) = %q, want value", got)
	}
}
