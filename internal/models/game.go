package models

// ParsedGame is the scratch-board intermediate representation produced by
// parsing a PGN, before any engine evaluation happens.
type ParsedGame struct {
	Game        interface{}  `json:"-"` // *chess.Game
	GameInfo    GameInfo     `json:"gameInfo"`
	Moves       []ParsedMove `json:"moves"`
	TotalMoves  int          `json:"totalMoves"`
	StartingFEN string       `json:"startingFen,omitempty"`
}

// ParsedMove is a single ply produced by the PGN parser, before evaluation.
type ParsedMove struct {
	MoveNumber int    `json:"moveNumber"`
	Move       string `json:"move"`
	SAN        string `json:"san"`
	UCI        string `json:"uci"`
	FEN        string `json:"fen"`
	IsWhite    bool   `json:"isWhite"`
}

// GamePhase is one of the three boundaries unified in services/phase.go.
type GamePhase string

const (
	Opening    GamePhase = "opening"
	Middlegame GamePhase = "middlegame"
	Endgame    GamePhase = "endgame"
)

func (gp GamePhase) String() string { return string(gp) }

// OpeningInfo is one ECO database entry, used to backfill Game.OpeningCode
// / Game.OpeningName when a PGN's headers omit them.
type OpeningInfo struct {
	ECO        string            `json:"eco"`
	Name       string            `json:"name"`
	Variation  string            `json:"variation"`
	Moves      []string          `json:"moves"`
	Popularity float64           `json:"popularity"`
	Statistics OpeningStatistics `json:"statistics"`
	Theory     string            `json:"theory"`
	KeyIdeas   []string          `json:"keyIdeas"`
}

// OpeningStatistics is the historical win/draw/loss split for an opening.
type OpeningStatistics struct {
	White float64 `json:"white"`
	Draw  float64 `json:"draw"`
	Black float64 `json:"black"`
}
