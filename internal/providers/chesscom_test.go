package providers

import "testing"

func TestParseArchiveMonth(t *testing.T) {
	year, month, ok := parseArchiveMonth("https://api.chess.com/pub/player/foo/games/2024/03")
	if !ok || year != 2024 || month != 3 {
		t.Errorf("parseArchiveMonth = (%d, %d, %v), want (2024, 3, true)", year, month, ok)
	}

	if _, _, ok := parseArchiveMonth("https://api.chess.com/pub/player/foo/games/archives"); ok {
		t.Error("parseArchiveMonth should reject a url with no trailing year/month")
	}
}

func TestNormalizeChessComResult(t *testing.T) {
	cases := map[string]string{
		"win":        "win",
		"checkmated": "loss",
		"timeout":    "loss",
		"resigned":   "loss",
		"abandoned":  "loss",
		"stalemate":  "draw",
		"agreed":     "draw",
	}
	for raw, want := range cases {
		if got := normalizeChessComResult(raw); got != want {
			t.Errorf("normalizeChessComResult(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestExtractChessComGameID(t *testing.T) {
	if got := extractChessComGameID("https://www.chess.com/game/live/123456789"); got != "123456789" {
		t.Errorf("extractChessComGameID = %q, want 123456789", got)
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{FromYear: 2024, FromMonth: 1, ToYear: 2024, ToMonth: 6}
	if !r.contains(2024, 3) {
		t.Error("expected March 2024 to be within range")
	}
	if r.contains(2023, 12) {
		t.Error("expected December 2023 to be outside range")
	}
	if r.contains(2024, 7) {
		t.Error("expected July 2024 to be outside range")
	}

	unbounded := DateRange{}
	if !unbounded.contains(1999, 1) {
		t.Error("a zero-value DateRange should contain everything")
	}
}
