// Package tasks holds the worker-side handlers enqueued by the
// dispatcher and run by the task runtime.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chess-backend/internal/coordinator"
	"chess-backend/internal/eventbus"
	"chess-backend/internal/models"
	"chess-backend/internal/providers"
	"chess-backend/internal/services"
	"chess-backend/internal/store"
	"chess-backend/internal/taskqueue"

	"github.com/sirupsen/logrus"
)

const importBatchSize = 10

// Handlers binds the stores and collaborators every task needs; its
// methods are registered onto taskqueue.Queue instances by cmd/worker.
type Handlers struct {
	Users        *store.UserStore
	Games        *store.GameStore
	Moves        *store.MoveStore
	Jobs         *store.JobStore
	Coordinator  *coordinator.Coordinator
	Bus          *eventbus.Bus
	Chess        *services.ChessService
	Opening      *services.OpeningService
	Coach        *services.CoachService
	EngineCfg    services.EngineDriverConfig
	EngineDepth  int
	EngineTimeMs int
	ChessCom     providers.Adapter
	Lichess      providers.Adapter
	Queue        *taskqueue.Queue // default queue, for enqueueing analyze_game from batch_analyze
}

// Register binds every task name this Handlers value implements onto q.
func (h *Handlers) Register(q *taskqueue.Queue) {
	q.Register("import_games", h.handleImportGames)
	q.Register("analyze_game", h.handleAnalyzeGame)
	q.Register("batch_analyze", h.handleBatchAnalyze)
}

type importGamesArgs struct {
	UserID    int64  `json:"user_id"`
	Handle    string `json:"handle"`
	JobID     int64  `json:"job_id"`
	Provider  string `json:"provider"`
	FromYear  int    `json:"from_year"`
	FromMonth int    `json:"from_month"`
	ToYear    int    `json:"to_year"`
	ToMonth   int    `json:"to_month"`
}

// handleImportGames fetches a user's games from a provider and inserts the
// ones not already present.
func (h *Handlers) handleImportGames(ctx context.Context, raw json.RawMessage) error {
	var args importGamesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("tasks: bad import_games args: %v", err)
	}
	log := logrus.WithFields(logrus.Fields{"job_id": args.JobID, "user_id": args.UserID, "provider": args.Provider})

	if err := h.Jobs.StartImportJob(args.JobID); err != nil {
		log.WithError(err).Error("failed to mark import job processing")
		return err
	}

	adapter := h.ChessCom
	if args.Provider == "lichess" {
		adapter = h.Lichess
	}

	fetched, err := adapter.FetchGames(ctx, args.Handle, providers.DateRange{
		FromYear: args.FromYear, FromMonth: args.FromMonth,
		ToYear: args.ToYear, ToMonth: args.ToMonth,
	})
	if err != nil {
		return h.failImport(args.JobID, log, err)
	}
	if err := h.Jobs.SetImportTotals(args.JobID, len(fetched)); err != nil {
		log.WithError(err).Warn("failed to set import totals")
	}

	existing, err := h.Games.ExistingProviderIDs(args.UserID, args.Provider)
	if err != nil {
		return h.failImport(args.JobID, log, err)
	}

	var imported int
	for _, g := range fetched {
		if existing[g.ProviderID] {
			continue
		}
		existing[g.ProviderID] = true

		game := &models.Game{
			UserID:      args.UserID,
			Provider:    args.Provider,
			ProviderURL: g.ProviderURL,
			ProviderID:  &g.ProviderID,
			PGN:         g.PGN,
			WhiteName:   g.WhiteName,
			BlackName:   g.BlackName,
			WhiteRating: g.WhiteRating,
			BlackRating: g.BlackRating,
			PlayedAs:    g.PlayedAs,
			Result:      models.Result(g.Result),
			Termination: g.Termination,
			TimeClass:   g.TimeClass,
			OpeningCode: g.OpeningCode,
			OpeningName: g.OpeningName,
			PlayedAt:    g.PlayedAt,
		}
		if _, err := h.Games.Insert(game); err != nil {
			log.WithError(err).Warn("failed to insert imported game, skipping")
			continue
		}

		imported++
		if imported%importBatchSize == 0 {
			progress := imported * 100 / max1(len(fetched))
			if err := h.Jobs.UpdateImportProgress(args.JobID, imported, progress); err != nil {
				log.WithError(err).Warn("failed to update import progress")
			}
		}
	}

	if err := h.Jobs.UpdateImportProgress(args.JobID, imported, 100); err != nil {
		log.WithError(err).Warn("failed to write final import progress")
	}
	newestRating, _ := h.Games.NewestRating(args.UserID)
	if err := h.Users.UpdateAfterImport(args.UserID, newestRating); err != nil {
		log.WithError(err).Warn("failed to update user after import")
	}
	if err := h.Jobs.CompleteImportJob(args.JobID); err != nil {
		log.WithError(err).Error("failed to mark import job completed")
		return err
	}
	log.WithField("imported", imported).Info("import completed")
	return nil
}

func (h *Handlers) failImport(jobID int64, log *logrus.Entry, err error) error {
	log.WithError(err).Warn("import failed")
	if ferr := h.Jobs.FailImportJob(jobID, err.Error()); ferr != nil {
		log.WithError(ferr).Error("failed to record import failure")
	}
	return err
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

type analyzeGameArgs struct {
	GameID int64 `json:"game_id"`
}

// handleAnalyzeGame runs the full per-game pipeline: state transition, engine
// analysis, results write, coordinator update, completion event.
func (h *Handlers) handleAnalyzeGame(ctx context.Context, raw json.RawMessage) error {
	var args analyzeGameArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("tasks: bad analyze_game args: %v", err)
	}
	log := logrus.WithField("game_id", args.GameID)

	game, err := h.Games.Get(args.GameID)
	if err != nil {
		log.WithError(err).Warn("game not found, skipping")
		return nil
	}
	if game.AnalysisState == models.AnalysisAnalyzed {
		return nil
	}

	if err := h.Games.SetAnalysisState(args.GameID, models.AnalysisInProgress); err != nil {
		return err
	}

	result, err := services.RunAnalysis(ctx, h.Chess, h.EngineCfg, h.EngineDepth, h.EngineTimeMs, game.PGN, game.PlayedAs, h.Coach)
	if err != nil {
		if errors.Is(err, services.ErrAnalysisCancelled) {
			// Partial results are unpersisted; state stays in_progress and
			// is cleaned up by the cancel endpoint's atomic reset.
			log.Info("analysis cancelled mid-game")
			return nil
		}
		// Any other failure (engine crash/timeout, PGN parse failure) is
		// terminal for this game: mark analyzed with zero stats so it is
		// never retried.
		log.WithError(err).Warn("analysis failed, marking analyzed with zero stats")
		if merr := h.Games.MarkAnalyzedZero(args.GameID); merr != nil {
			log.WithError(merr).Error("failed to mark game analyzed-zero after failure")
			return merr
		}
		return nil
	}

	if err := h.Games.StoreAnalysis(args.GameID, result.Stats.Accuracy, result.Stats.AverageCentipawnLoss,
		result.Stats.NumBlunders, result.Stats.NumMistakes, result.Stats.NumInaccuracies, result.Stats.NumMoves); err != nil {
		return err
	}
	if game.OpeningCode == "" {
		code, name := h.resolveOpening(result)
		if code != "" {
			if err := h.Games.SetOpening(args.GameID, code, name); err != nil {
				log.WithError(err).Warn("failed to backfill opening")
			}
		}
	}
	if err := h.Moves.InsertAll(args.GameID, result.Moves); err != nil {
		return err
	}

	if err := h.Coordinator.AfterAnalyzeGame(game.UserID); err != nil {
		log.WithError(err).Error("coordinator update failed")
	}

	if _, err := h.Bus.PublishAnalysisCompleted(ctx, game.UserID, args.GameID); err != nil {
		log.WithError(err).Warn("failed to publish analysis_completed event")
	}

	return nil
}

// resolveOpening backfills ECO code/name when a PGN's own headers didn't
// carry one, first from what parsing found, then from the ECO database by
// move sequence.
func (h *Handlers) resolveOpening(result *services.AnalysisResult) (code, name string) {
	if result.GameInfo.ECO != "" {
		return result.GameInfo.ECO, result.GameInfo.Opening
	}
	if h.Opening == nil {
		return "", ""
	}

	limit := len(result.Moves)
	if limit > 12 {
		limit = 12
	}
	sans := make([]string, limit)
	for i := 0; i < limit; i++ {
		sans[i] = result.Moves[i].SAN
	}

	info, err := h.Opening.SearchByMoves(sans)
	if err != nil {
		return "", ""
	}
	return info.ECO, info.Name
}

type batchAnalyzeArgs struct {
	UserID int64 `json:"user_id"`
	JobID  int64 `json:"job_id"`
}

// handleBatchAnalyze marks every unanalyzed game in_progress and fans out one
// analyze task per game; terminal resolution is the coordinator's job.
func (h *Handlers) handleBatchAnalyze(ctx context.Context, raw json.RawMessage) error {
	var args batchAnalyzeArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("tasks: bad batch_analyze args: %v", err)
	}
	log := logrus.WithFields(logrus.Fields{"job_id": args.JobID, "user_id": args.UserID})

	if err := h.Jobs.StartAnalysisJob(args.JobID); err != nil {
		return err
	}

	games, err := h.Games.UnanalyzedForUser(args.UserID)
	if err != nil {
		return err
	}
	if err := h.Jobs.SetAnalysisTotals(args.JobID, len(games)); err != nil {
		log.WithError(err).Warn("failed to set analysis totals")
	}
	if len(games) == 0 {
		return h.Jobs.CompleteAnalysisJobEmpty(args.JobID)
	}

	for _, g := range games {
		if err := h.Games.SetAnalysisState(g.ID, models.AnalysisInProgress); err != nil {
			log.WithError(err).Warn("failed to mark game in_progress before enqueue")
			continue
		}
		if err := taskqueue.Enqueue(ctx, h.Queue.Client(), h.Queue.Name(), "analyze_game", analyzeGameArgs{GameID: g.ID}); err != nil {
			log.WithError(err).Error("failed to enqueue analyze_game")
		}
	}
	return nil
}
