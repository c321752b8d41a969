package store

import (
	"fmt"
	"time"

	"chess-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// GameStore is the repository for Game rows.
type GameStore struct {
	db *sqlx.DB
}

func NewGameStore(db *sqlx.DB) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) Get(gameID int64) (*models.Game, error) {
	var g models.Game
	err := s.db.Get(&g, `SELECT * FROM games WHERE id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %d: %v", gameID, err)
	}
	return &g, nil
}

// ExistingProviderIDs returns the set of provider_id values already
// imported for a user+provider, used to dedupe a re-import.
func (s *GameStore) ExistingProviderIDs(userID int64, provider string) (map[string]bool, error) {
	var ids []string
	err := s.db.Select(&ids,
		`SELECT provider_id FROM games WHERE user_id = $1 AND provider = $2 AND provider_id IS NOT NULL`,
		userID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing provider ids: %v", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Insert creates a new Game row with analysis_state=unanalyzed.
func (s *GameStore) Insert(g *models.Game) (int64, error) {
	g.AnalysisState = models.AnalysisUnanalyzed
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO games
			(user_id, provider, provider_url, provider_id, pgn, white_name, black_name,
			 white_rating, black_rating, played_as, result, termination, time_class,
			 opening_code, opening_name, analysis_state, played_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		 RETURNING id`,
		g.UserID, g.Provider, g.ProviderURL, g.ProviderID, g.PGN, g.WhiteName, g.BlackName,
		g.WhiteRating, g.BlackRating, g.PlayedAs, g.Result, g.Termination, g.TimeClass,
		g.OpeningCode, g.OpeningName, g.AnalysisState, g.PlayedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert game: %v", err)
	}
	return id, nil
}

// SetAnalysisState transitions a Game's analysis facet, e.g. to
// in_progress before a worker starts, or back to unanalyzed on cancel.
func (s *GameStore) SetAnalysisState(gameID int64, state models.AnalysisState) error {
	_, err := s.db.Exec(`UPDATE games SET analysis_state = $2 WHERE id = $1`, gameID, state)
	if err != nil {
		return fmt.Errorf("failed to set analysis_state on game %d: %v", gameID, err)
	}
	return nil
}

// MarkAnalyzedZero marks a Game analyzed with zero statistics, the
// required terminal state after an engine failure: it must
// never be retried.
func (s *GameStore) MarkAnalyzedZero(gameID int64) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE games SET analysis_state = $2, analyzed_at = $3, accuracy = 0, avg_cp_loss = 0,
		 num_blunders = 0, num_mistakes = 0, num_inaccuracies = 0, move_count = 0 WHERE id = $1`,
		gameID, models.AnalysisAnalyzed, now,
	)
	if err != nil {
		return fmt.Errorf("failed to mark game %d analyzed-with-zero: %v", gameID, err)
	}
	return nil
}

// StoreAnalysis writes the full result of a successful analysis run.
func (s *GameStore) StoreAnalysis(gameID int64, accuracy, avgCPLoss float64, blunders, mistakes, inaccuracies, moveCount int) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE games SET analysis_state = $2, accuracy = $3, avg_cp_loss = $4,
		 num_blunders = $5, num_mistakes = $6, num_inaccuracies = $7, move_count = $8,
		 analyzed_at = $9 WHERE id = $1`,
		gameID, models.AnalysisAnalyzed, accuracy, avgCPLoss, blunders, mistakes, inaccuracies, moveCount, now,
	)
	if err != nil {
		return fmt.Errorf("failed to store analysis for game %d: %v", gameID, err)
	}
	return nil
}

// SetOpening backfills ECO/opening name when the PGN headers omitted it.
func (s *GameStore) SetOpening(gameID int64, code, name string) error {
	_, err := s.db.Exec(`UPDATE games SET opening_code = $2, opening_name = $3 WHERE id = $1`, gameID, code, name)
	if err != nil {
		return fmt.Errorf("failed to set opening on game %d: %v", gameID, err)
	}
	return nil
}

// UnanalyzedForUser returns every Game for a user whose analysis_state is
// not "analyzed", used to seed a batch analysis run.
func (s *GameStore) UnanalyzedForUser(userID int64) ([]models.Game, error) {
	var games []models.Game
	err := s.db.Select(&games,
		`SELECT * FROM games WHERE user_id = $1 AND analysis_state != $2`,
		userID, models.AnalysisAnalyzed)
	if err != nil {
		return nil, fmt.Errorf("failed to load unanalyzed games for user %d: %v", userID, err)
	}
	return games, nil
}

// CountAnalyzedSince counts Games analyzed at or after since, the input to
// the coordinator's progress recompute.
func (s *GameStore) CountAnalyzedSince(userID int64, since time.Time) (int, error) {
	var count int
	err := s.db.Get(&count,
		`SELECT count(*) FROM games WHERE user_id = $1 AND analysis_state = $2 AND analyzed_at >= $3`,
		userID, models.AnalysisAnalyzed, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyzed games for user %d: %v", userID, err)
	}
	return count, nil
}

// ResetInProgressToUnanalyzed atomically resets every in_progress Game of
// a user back to unanalyzed, the cancel endpoint's compensating action
// so no game is left stuck.
func (s *GameStore) ResetInProgressToUnanalyzed(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE games SET analysis_state = $2 WHERE user_id = $1 AND analysis_state = $3`,
		userID, models.AnalysisUnanalyzed, models.AnalysisInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to reset in-progress games for user %d: %v", userID, err)
	}
	return nil
}

// NewestRating returns the owner's own rating from their most recently
// played rated game, used to update User.current_rating.
func (s *GameStore) NewestRating(userID int64) (int, error) {
	var rating int
	err := s.db.Get(&rating,
		`SELECT CASE WHEN played_as = 'white' THEN white_rating ELSE black_rating END
		 FROM games
		 WHERE user_id = $1 AND (CASE WHEN played_as = 'white' THEN white_rating ELSE black_rating END) > 0
		 ORDER BY played_at DESC LIMIT 1`,
		userID)
	if err != nil {
		return 0, nil // no rated games yet; not worth failing the import over
	}
	return rating, nil
}

// Delete removes a Game owned by userID; Move rows go with it via the
// schema's cascade. Returns false when no such game exists for that owner.
func (s *GameStore) Delete(gameID, userID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM games WHERE id = $1 AND user_id = $2`, gameID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete game %d: %v", gameID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteMoves removes all Move rows for a game, used by force re-analyze
// before re-running the analyzer.
func (s *GameStore) DeleteMoves(gameID int64) error {
	_, err := s.db.Exec(`DELETE FROM moves WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete moves for game %d: %v", gameID, err)
	}
	return nil
}
