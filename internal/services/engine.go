package services

import (
	"context"
	"errors"
	"fmt"

	"chess-backend/internal/apperr"
	"chess-backend/pkg/uci"

	"github.com/sirupsen/logrus"
)

// Limit bounds one analyse() call: the engine stops at whichever of depth
// or TimeMs is reached first.
type Limit struct {
	Depth int
	TimeMs int
}

// Line is one principal variation returned by the engine, with its score
// folded into centipawn space from the side-to-move's POV.
type Line struct {
	PV    []string
	Score int // centipawns, POV; mate already folded via foldScore
	Mate  *int
}

// EngineDriver owns exactly one UCI engine subprocess for the lifetime of
// a single game analysis task. It is not pooled: a worker instantiates
// a new driver per game and closes it at the end.
type EngineDriver struct {
	engine *uci.Engine
	cfg    EngineDriverConfig
}

type EngineDriverConfig struct {
	BinaryPath string
	Threads    int
	HashMB     int
	Contempt   int
}

// NewEngineDriver spawns and initializes a fresh engine subprocess.
func NewEngineDriver(cfg EngineDriverConfig) (*EngineDriver, error) {
	e, err := uci.NewEngine(cfg.BinaryPath)
	if err != nil {
		return nil, apperr.EngineFailure("failed to spawn engine", err)
	}
	if err := e.Initialize(); err != nil {
		_ = e.Close()
		return nil, apperr.EngineFailure("engine failed to initialize", err)
	}
	if cfg.Threads > 0 {
		_ = e.SetOption("Threads", fmt.Sprintf("%d", cfg.Threads))
	}
	if cfg.HashMB > 0 {
		_ = e.SetOption("Hash", fmt.Sprintf("%d", cfg.HashMB))
	}
	_ = e.SetOption("Contempt", fmt.Sprintf("%d", cfg.Contempt))
	if err := e.NewGame(); err != nil {
		_ = e.Close()
		return nil, apperr.EngineFailure("engine rejected ucinewgame", err)
	}
	return &EngineDriver{engine: e, cfg: cfg}, nil
}

// Analyse queries the engine at fen, honoring limit, with k passed to the
// engine as its MultiPV setting. It returns exactly one Line, the engine's
// top line; lines beyond the first are not returned. Errors are
// apperr.EngineFailure
// if the subprocess has died, or apperr.EngineTimeout if no line arrives
// within limit.TimeMs*(1+slack).
func (d *EngineDriver) Analyse(ctx context.Context, fen string, limit Limit, k int) ([]Line, error) {
	if err := d.engine.SetPosition(fen, nil); err != nil {
		return nil, apperr.EngineFailure("failed to set position", err)
	}

	result, err := d.engine.SearchContext(ctx, limit.Depth, limit.TimeMs, k)
	if err != nil {
		if errors.Is(err, uci.ErrSearchTimeout) {
			return nil, apperr.EngineTimeout("engine did not respond in time", err)
		}
		return nil, apperr.EngineFailure("engine search failed", err)
	}
	if result.BestMove == "" {
		return nil, apperr.EngineFailure("engine returned no best move", nil)
	}

	cp, mate := foldScore(result.Score, result.ScoreType)
	line := Line{
		PV:    append([]string{result.BestMove}, result.PrincipalVariation...),
		Score: cp,
		Mate:  mate,
	}
	if len(result.PrincipalVariation) > 0 && result.PrincipalVariation[0] == result.BestMove {
		line.PV = result.PrincipalVariation
	}
	return []Line{line}, nil
}

// Close closes the owned engine subprocess, guaranteeing it is reaped.
// Safe to call more than once.
func (d *EngineDriver) Close() error {
	if d.engine == nil {
		return nil
	}
	err := d.engine.Close()
	d.engine = nil
	if err != nil && !errors.Is(err, uci.ErrForcedKill) {
		logrus.WithError(err).Warn("engine process exited abnormally")
	}
	return nil
}

// foldScore maps a UCI score into POV centipawns, folding mate-in-N into
// ±(10000 - 100N) so downstream arithmetic stays in centipawn space.
func foldScore(score int, scoreType string) (cp int, mate *int) {
	if scoreType != "mate" {
		return score, nil
	}
	n := score
	folded := 10000 - 100*abs(n)
	if n < 0 {
		folded = -folded
	}
	return folded, &n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
