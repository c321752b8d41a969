package services

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"chess-backend/internal/models"

	"github.com/notnil/chess"
)

// ChessService parses PGN text into the scratch intermediate
// representation the analyzer walks.
type ChessService struct{}

func NewChessService() *ChessService {
	return &ChessService{}
}

var headerRe = regexp.MustCompile(`^\[(\w+)\s+"([^"]*)"\]$`)

// ParsePGN parses a PGN string, extracting headers (ECO, Opening, players,
// ratings, result, termination, time class) and the full move list with
// SAN/UCI/FEN for every ply.
func (s *ChessService) ParsePGN(pgnStr string) (*models.ParsedGame, error) {
	headers := parseHeaders(pgnStr)

	pgnFunc, err := chess.PGN(strings.NewReader(pgnStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PGN: %v", err)
	}
	game := chess.NewGame(pgnFunc)
	if len(headers) == 0 && len(game.Moves()) == 0 {
		return nil, fmt.Errorf("failed to parse PGN: no tag pairs or moves found")
	}

	gameInfo := s.gameInfoFromHeaders(headers, game)

	moves, err := s.extractMoves(game)
	if err != nil {
		return nil, fmt.Errorf("failed to extract moves: %v", err)
	}

	parsed := &models.ParsedGame{
		Game:       game,
		GameInfo:   gameInfo,
		Moves:      moves,
		TotalMoves: len(moves),
	}
	return parsed, nil
}

// parseHeaders scans the PGN's leading header block, matching each
// tag-pair line against headerRe.
func parseHeaders(pgn string) map[string]string {
	headers := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(pgn))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "[") {
			break
		}
		if m := headerRe.FindStringSubmatch(line); m != nil {
			headers[m[1]] = m[2]
		}
	}
	return headers
}

func (s *ChessService) gameInfoFromHeaders(h map[string]string, game *chess.Game) models.GameInfo {
	info := models.GameInfo{
		White:  orDefault(h["White"], "Unknown"),
		Black:  orDefault(h["Black"], "Unknown"),
		Result: orDefault(h["Result"], "*"),
	}
	if game.Outcome() != chess.NoOutcome {
		switch game.Outcome() {
		case chess.WhiteWon:
			info.Result = "1-0"
		case chess.BlackWon:
			info.Result = "0-1"
		case chess.Draw:
			info.Result = "1/2-1/2"
		}
	}
	info.WhiteRating = s.parseRating(h["WhiteElo"])
	info.BlackRating = s.parseRating(h["BlackElo"])
	info.Date = h["Date"]
	info.Event = h["Event"]
	info.Site = h["Site"]
	info.ECO = h["ECO"]
	info.Opening = h["Opening"]
	info.Termination = h["Termination"]
	info.TimeClass = h["TimeControl"]
	return info
}

func (s *ChessService) extractMoves(game *chess.Game) ([]models.ParsedMove, error) {
	var moves []models.ParsedMove
	tempGame := chess.NewGame()

	for i, move := range game.Moves() {
		san := chess.AlgebraicNotation{}.Encode(tempGame.Position(), move)
		if err := tempGame.Move(move); err != nil {
			return nil, fmt.Errorf("failed to apply move %d: %v", i, err)
		}

		isWhite := models.IsWhiteOf(i)
		moves = append(moves, models.ParsedMove{
			MoveNumber: models.MoveNumberOf(i),
			Move:       move.String(),
			SAN:        san,
			UCI:        s.moveToUCI(move),
			FEN:        tempGame.Position().String(),
			IsWhite:    isWhite,
		})
	}

	return moves, nil
}

func (s *ChessService) moveToUCI(move *chess.Move) string {
	uci := move.S1().String() + move.S2().String()
	switch move.Promo() {
	case chess.Queen:
		uci += "q"
	case chess.Rook:
		uci += "r"
	case chess.Bishop:
		uci += "b"
	case chess.Knight:
		uci += "n"
	}
	return uci
}

func (s *ChessService) parseRating(ratingStr string) int {
	rating, err := strconv.Atoi(strings.TrimSpace(ratingStr))
	if err != nil {
		return 0
	}
	return rating
}

// ValidateFEN validates a FEN string before it's handed to the engine.
func (s *ChessService) ValidateFEN(fen string) error {
	_, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("invalid FEN: %v", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
