package services

import (
	"context"
	"errors"
	"fmt"

	"chess-backend/internal/apperr"
	"chess-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrAnalysisCancelled is returned by Analyzer.AnalyzeGame when the
// cooperative cancellation signal fired between positions. The
// caller must treat whatever Moves were produced so far as unpersisted.
var ErrAnalysisCancelled = errors.New("analysis cancelled")

// Stats is the aggregate produced alongside the per-move records.
type Stats struct {
	NumMoves             int
	AverageCentipawnLoss float64
	Accuracy             float64
	NumBlunders          int
	NumMistakes          int
	NumInaccuracies      int
}

// AnalysisResult is everything the analyzer produces for one game.
type AnalysisResult struct {
	GameInfo models.GameInfo
	Moves    []models.Move
	Stats    Stats
}

// Analyzer is Component B: it walks a parsed game's positions, calling the
// engine driver exactly once per position (the position-reuse
// optimization) and classifying each move.
type Analyzer struct {
	chess  *ChessService
	depth  int
	timeMs int
	coach  *CoachService
}

func NewAnalyzer(chess *ChessService, depth, timeMs int) *Analyzer {
	return &Analyzer{chess: chess, depth: depth, timeMs: timeMs}
}

// WithCoach attaches an optional commentary generator; nil disables it.
func (a *Analyzer) WithCoach(coach *CoachService) *Analyzer {
	a.coach = coach
	return a
}

// AnalyzeGame parses pgn, evaluates every position exactly once (n+1
// engine calls for n moves), and classifies each ply. userColor selects
// which side's moves feed the aggregate Stats ("white" or "black").
func (a *Analyzer) AnalyzeGame(ctx context.Context, driver *EngineDriver, pgn string, userColor string) (*AnalysisResult, error) {
	parsed, err := a.chess.ParsePGN(pgn)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}

	startFEN := chessStartFEN
	if parsed.StartingFEN != "" {
		startFEN = parsed.StartingFEN
	}

	n := len(parsed.Moves)
	positions := make([]string, n+1)
	positions[0] = startFEN
	for i, mv := range parsed.Moves {
		positions[i+1] = mv.FEN
	}

	evals := make([]Line, n+1)
	for i, fen := range positions {
		select {
		case <-ctx.Done():
			return nil, ErrAnalysisCancelled
		default:
		}

		lines, err := driver.Analyse(ctx, fen, Limit{Depth: a.depth, TimeMs: a.timeMs}, 1)
		if err != nil {
			return nil, err
		}
		evals[i] = lines[0]
	}

	moves := make([]models.Move, n)
	var totalCPLoss float64
	var userMoveCount int
	var numBlunders, numMistakes, numInaccuracies int
	var commentaryCount int

	for i, pm := range parsed.Moves {
		eBefore := evals[i].Score
		eAfterRaw := evals[i+1].Score
		cpl := eBefore + eAfterRaw
		evalAfterStored := -eAfterRaw

		bestMove := ""
		if len(evals[i].PV) > 0 {
			bestMove = evals[i].PV[0]
		}

		classification := Classify(cpl, &eBefore, &evalAfterStored)

		isUserMove := (pm.IsWhite && userColor == "white") || (!pm.IsWhite && userColor == "black")
		if isUserMove {
			totalCPLoss += float64(max0(cpl))
			userMoveCount++
			switch classification {
			case "blunder":
				numBlunders++
			case "mistake":
				numMistakes++
			case "inaccuracy":
				numInaccuracies++
			}
		}

		var commentary *string
		if a.coach != nil && isUserMove {
			commentary = a.coach.CommentOn(ctx, commentaryCount, positions[i], pm.UCI, classification, i)
			if commentary != nil {
				commentaryCount++
			}
		}

		moves[i] = models.Move{
			HalfMove:         i,
			MoveNumber:       models.MoveNumberOf(i),
			IsWhite:          pm.IsWhite,
			SAN:              pm.SAN,
			UCI:              pm.UCI,
			EvaluationBefore: eBefore,
			EvaluationAfter:  evalAfterStored,
			HasEvaluation:    true,
			BestMoveUCI:      bestMove,
			Classification:   classification,
			CentipawnLoss:    cpl,
			Commentary:       commentary,
		}
	}

	stats := Stats{NumMoves: n}
	if userMoveCount > 0 {
		stats.AverageCentipawnLoss = totalCPLoss / float64(userMoveCount)
		stats.Accuracy = clamp(100-stats.AverageCentipawnLoss/10, 0, 100)
	} else {
		stats.Accuracy = 100
	}
	stats.NumBlunders = numBlunders
	stats.NumMistakes = numMistakes
	stats.NumInaccuracies = numInaccuracies

	return &AnalysisResult{GameInfo: parsed.GameInfo, Moves: moves, Stats: stats}, nil
}

const chessStartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunAnalysis is the convenience entry point used by the analyze_game task
// handler in package tasks: it
// spawns a fresh driver, runs the analysis, and guarantees the driver is
// closed on every exit path.
func RunAnalysis(ctx context.Context, chess *ChessService, cfg EngineDriverConfig, depth, timeMs int, pgn, userColor string, coach *CoachService) (*AnalysisResult, error) {
	driver, err := NewEngineDriver(cfg)
	if err != nil {
		return nil, err
	}
	defer driver.Close()

	result, err := NewAnalyzer(chess, depth, timeMs).WithCoach(coach).AnalyzeGame(ctx, driver, pgn, userColor)
	if err != nil && !errors.Is(err, ErrAnalysisCancelled) && apperr.KindOf(err) == "" {
		logrus.WithError(err).Warn("analyzer failed outside of engine/cancellation error kinds")
	}
	return result, err
}
