// Package providers adapts external game archives (chess.com, lichess)
// into the normalized shape the import worker consumes. Each adapter
// translates its provider's wire format into NormalizedGame and raises
// apperr kinds: UserNotFound, RateLimited, Transient, Fatal. The import
// worker records any of them as the failed job's error message.
package providers

import (
	"context"
	"time"
)

// NormalizedGame maps 1:1 onto the Game metadata fields a provider can
// supply.
type NormalizedGame struct {
	ProviderURL string
	ProviderID  string
	PGN         string
	WhiteName   string
	BlackName   string
	WhiteRating int
	BlackRating int
	PlayedAs    string
	Result      string
	Termination string
	TimeClass   string
	OpeningCode string
	OpeningName string
	PlayedAt    time.Time
}

// DateRange bounds an import by year/month, inclusive. A zero Year means
// unbounded on that side.
type DateRange struct {
	FromYear, FromMonth int
	ToYear, ToMonth     int
}

// Adapter is the external collaborator the import worker consumes.
type Adapter interface {
	// Name identifies the provider, used as Game.Provider.
	Name() string
	// FetchGames returns every game for handle within the date range.
	FetchGames(ctx context.Context, handle string, r DateRange) ([]NormalizedGame, error)
}

func (r DateRange) contains(year, month int) bool {
	if r.FromYear != 0 {
		if year < r.FromYear || (year == r.FromYear && month < r.FromMonth) {
			return false
		}
	}
	if r.ToYear != 0 {
		if year > r.ToYear || (year == r.ToYear && month > r.ToMonth) {
			return false
		}
	}
	return true
}
