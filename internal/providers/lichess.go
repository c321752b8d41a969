package providers

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"chess-backend/internal/apperr"
)

// LichessAdapter implements Adapter against the lichess.org games export
// endpoint, which streams concatenated PGN text rather than JSON.
type LichessAdapter struct {
	httpClient *http.Client
	baseURL    string
}

func NewLichessAdapter() *LichessAdapter {
	return &LichessAdapter{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    "https://lichess.org",
	}
}

func (a *LichessAdapter) Name() string { return "lichess" }

func (a *LichessAdapter) FetchGames(ctx context.Context, handle string, r DateRange) ([]NormalizedGame, error) {
	url := fmt.Sprintf("%s/api/games/user/%s?moves=true&tags=true", a.baseURL, strings.ToLower(handle))

	body, err := a.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	games := splitPGNGames(body)

	var out []NormalizedGame
	for _, pgn := range games {
		headers := parseLichessHeaders(pgn)
		ng, ok := normalizeLichessGame(handle, pgn, headers)
		if !ok {
			continue
		}
		if !r.contains(ng.PlayedAt.Year(), int(ng.PlayedAt.Month())) {
			continue
		}
		out = append(out, ng)
	}
	return out, nil
}

func (a *LichessAdapter) fetchWithRetry(ctx context.Context, url string) (readCloser, error) {
	const maxAttempts = 4
	backoff := 500 * time.Millisecond

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, apperr.Fatal("lichess: failed to build request", err)
		}
		req.Header.Set("Accept", "application/x-chess-pgn")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			if attempt == maxAttempts {
				return nil, apperr.Transient("lichess: request failed after retries", err)
			}
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, apperr.UserNotFound("lichess: handle not found", nil)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			if attempt == maxAttempts {
				if resp.StatusCode == http.StatusTooManyRequests {
					return nil, apperr.RateLimited("lichess: still rate limited after retries", nil)
				}
				return nil, apperr.Transient(fmt.Sprintf("lichess: status %d after retries", resp.StatusCode), nil)
			}
			time.Sleep(backoff)
			backoff *= 2
			continue
		case resp.StatusCode >= 400:
			resp.Body.Close()
			return nil, apperr.Fatal(fmt.Sprintf("lichess: unexpected status %d", resp.StatusCode), nil)
		}
		return resp.Body, nil
	}
	return nil, apperr.Transient("lichess: exhausted retries", nil)
}

// readCloser avoids importing io solely for the interface name.
type readCloser interface {
	Read(p []byte) (n int, err error)
	Close() error
}

// splitPGNGames splits a concatenated PGN stream into individual games. A
// new game starts at an "[Event " header once the current buffer already
// holds a movetext line, since the header block itself may span several
// consecutive lines.
func splitPGNGames(r readCloser) []string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var games []string
	var current strings.Builder
	sawMovetext := false

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			games = append(games, strings.TrimSpace(current.String()))
		}
		current.Reset()
		sawMovetext = false
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "[Event ") && sawMovetext {
			flush()
		}
		if line != "" && !strings.HasPrefix(line, "[") {
			sawMovetext = true
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()
	return games
}

var lichessHeaderRe = regexp.MustCompile(`^\[(\w+)\s+"([^"]*)"\]`)

func parseLichessHeaders(pgn string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(pgn, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			if len(out) > 0 {
				break
			}
			continue
		}
		m := lichessHeaderRe.FindStringSubmatch(line)
		if m != nil {
			out[m[1]] = m[2]
		}
	}
	return out
}

func normalizeLichessGame(handle, pgn string, h map[string]string) (NormalizedGame, bool) {
	white := h["White"]
	black := h["Black"]
	if white == "" || black == "" {
		return NormalizedGame{}, false
	}

	playedAs := "white"
	if !strings.EqualFold(white, handle) {
		playedAs = "black"
	}

	whiteRating, _ := strconv.Atoi(h["WhiteElo"])
	blackRating, _ := strconv.Atoi(h["BlackElo"])

	result := "draw"
	switch h["Result"] {
	case "1-0":
		result = pick2(playedAs == "white", "win", "loss")
	case "0-1":
		result = pick2(playedAs == "black", "win", "loss")
	}

	playedAt := time.Now()
	if d := h["UTCDate"]; d != "" {
		if t, err := time.Parse("2006.01.02", d); err == nil {
			playedAt = t
		}
	}

	return NormalizedGame{
		ProviderURL: h["Site"],
		ProviderID:  extractLichessGameID(h["Site"]),
		PGN:         pgn,
		WhiteName:   white,
		BlackName:   black,
		WhiteRating: whiteRating,
		BlackRating: blackRating,
		PlayedAs:    playedAs,
		Result:      result,
		Termination: h["Termination"],
		TimeClass:   strings.ToLower(h["TimeControl"]),
		OpeningCode: h["ECO"],
		OpeningName: h["Opening"],
		PlayedAt:    playedAt,
	}, true
}

func pick2(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

func extractLichessGameID(site string) string {
	idx := strings.LastIndex(site, "/")
	if idx == -1 {
		return site
	}
	return site[idx+1:]
}
