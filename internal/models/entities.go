package models

import "time"

// Status is the lifecycle status shared by ImportJob and AnalysisJob.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// AnalysisState is Game's analysis facet, independent of job status.
type AnalysisState string

const (
	AnalysisUnanalyzed AnalysisState = "unanalyzed"
	AnalysisInProgress AnalysisState = "in_progress"
	AnalysisAnalyzed   AnalysisState = "analyzed"
)

// Result is the outcome of a Game from the owner's perspective.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// User is the owner of Games and Jobs. This is the row the rest of the
// pipeline joins against; authentication lives outside this service.
type User struct {
	ID               int64     `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	Email            string    `db:"email" json:"email"`
	CredentialDigest string    `db:"credential_digest" json:"-"`
	ProviderAHandle  *string   `db:"provider_a_handle" json:"providerAHandle,omitempty"`
	ProviderBHandle  *string   `db:"provider_b_handle" json:"providerBHandle,omitempty"`
	LastImportAt     *time.Time `db:"last_import_at" json:"lastImportAt,omitempty"`
	CurrentRating    int       `db:"current_rating" json:"currentRating"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// Game is one imported chess game plus its analysis facet.
type Game struct {
	ID             int64         `db:"id" json:"id"`
	UserID         int64         `db:"user_id" json:"userId"`
	Provider       string        `db:"provider" json:"provider"`
	ProviderURL    string        `db:"provider_url" json:"providerUrl"`
	ProviderID     *string       `db:"provider_id" json:"providerId,omitempty"`
	PGN            string        `db:"pgn" json:"pgn"`
	WhiteName      string        `db:"white_name" json:"whiteName"`
	BlackName      string        `db:"black_name" json:"blackName"`
	WhiteRating    int           `db:"white_rating" json:"whiteRating"`
	BlackRating    int           `db:"black_rating" json:"blackRating"`
	PlayedAs       string        `db:"played_as" json:"playedAs"` // "white" | "black"
	Result         Result        `db:"result" json:"result"`
	Termination    string        `db:"termination" json:"termination"`
	TimeClass      string        `db:"time_class" json:"timeClass"`
	OpeningCode    string        `db:"opening_code" json:"openingCode"`
	OpeningName    string        `db:"opening_name" json:"openingName"`
	AnalysisState  AnalysisState `db:"analysis_state" json:"analysisState"`
	Accuracy       float64       `db:"accuracy" json:"accuracy"`
	AvgCPLoss      float64       `db:"avg_cp_loss" json:"avgCpLoss"`
	NumBlunders    int           `db:"num_blunders" json:"numBlunders"`
	NumMistakes    int           `db:"num_mistakes" json:"numMistakes"`
	NumInaccuracies int          `db:"num_inaccuracies" json:"numInaccuracies"`
	MoveCount      int           `db:"move_count" json:"moveCount"`
	AnalyzedAt     *time.Time    `db:"analyzed_at" json:"analyzedAt,omitempty"`
	PlayedAt       time.Time     `db:"played_at" json:"playedAt"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
}

// Move is one ply of an analyzed Game.
type Move struct {
	ID              int64   `db:"id" json:"id"`
	GameID          int64   `db:"game_id" json:"gameId"`
	HalfMove        int     `db:"half_move" json:"halfMove"`
	MoveNumber      int     `db:"move_number" json:"moveNumber"`
	IsWhite         bool    `db:"is_white" json:"isWhite"`
	SAN             string  `db:"san" json:"san"`
	UCI             string  `db:"uci" json:"uci"`
	EvaluationBefore int    `db:"evaluation_before" json:"evaluationBefore"`
	EvaluationAfter  int    `db:"evaluation_after" json:"evaluationAfter"`
	HasEvaluation    bool   `db:"has_evaluation" json:"hasEvaluation"`
	BestMoveUCI     string  `db:"best_move_uci" json:"bestMoveUci"`
	Classification  string  `db:"classification" json:"classification"`
	CentipawnLoss   int     `db:"centipawn_loss" json:"centipawnLoss"`
	Commentary      *string `db:"commentary" json:"commentary,omitempty"`
}

// MoveNumberOf returns the 1-based full move number for a 0-based ply:
// floor(half_move/2) + 1.
func MoveNumberOf(halfMove int) int { return halfMove/2 + 1 }

// IsWhiteOf reports whether a 0-based ply belongs to White.
func IsWhiteOf(halfMove int) bool { return halfMove%2 == 0 }

// ImportJob tracks one provider import run for a user.
type ImportJob struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"userId"`
	Provider      string     `db:"provider" json:"provider"`
	Status        Status     `db:"status" json:"status"`
	Progress      int        `db:"progress" json:"progress"`
	TotalGames    int        `db:"total_games" json:"totalGames"`
	ImportedGames int        `db:"imported_games" json:"importedGames"`
	ErrorMessage  *string    `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	StartedAt     *time.Time `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// AnalysisJob tracks one batch-analyze run. A single-game analyze creates
// no job row; its progress shows only in the Game's analysis_state.
type AnalysisJob struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"userId"`
	Status         Status     `db:"status" json:"status"`
	Progress       int        `db:"progress" json:"progress"`
	TotalGames     int        `db:"total_games" json:"totalGames"`
	AnalyzedGames  int        `db:"analyzed_games" json:"analyzedGames"`
	ErrorMessage   *string    `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	StartedAt      *time.Time `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt    *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}
