// Package dispatch is Component E: the HTTP-side logic shared by every
// import/analyze endpoint — idempotency check, job row creation, and task
// enqueue. Handlers in internal/handlers call into this for every import,
// analyze and cancel request rather than touching the queue directly.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"chess-backend/internal/coordinator"
	"chess-backend/internal/models"
	"chess-backend/internal/store"
	"chess-backend/internal/taskqueue"
)

// ErrDuplicateJob is returned when the caller already has a non-terminal
// job of the same kind; handlers translate this to HTTP 409.
var ErrDuplicateJob = errors.New("dispatch: an active job already exists")

// ErrNoProviderHandle is returned when the caller has no handle on file
// for the requested provider and didn't supply one in the request.
var ErrNoProviderHandle = errors.New("dispatch: no provider handle on file")

type Dispatcher struct {
	Users       *store.UserStore
	Games       *store.GameStore
	Jobs        *store.JobStore
	Coordinator *coordinator.Coordinator
	Queue       *taskqueue.Queue // default queue
	Imports     *taskqueue.Queue // imports queue (concurrency=1)
}

func New(users *store.UserStore, games *store.GameStore, jobs *store.JobStore, coord *coordinator.Coordinator, defaultQueue, importsQueue *taskqueue.Queue) *Dispatcher {
	return &Dispatcher{Users: users, Games: games, Jobs: jobs, Coordinator: coord, Queue: defaultQueue, Imports: importsQueue}
}

// Cancel marks the job cancelled and atomically resets the user's
// in_progress games.
func (d *Dispatcher) Cancel(userID, jobID int64) error {
	return d.Coordinator.Cancel(userID, jobID)
}

// ImportParams mirrors the body of POST /api/games/import.
type ImportParams struct {
	Handle     string
	FromYear   int
	FromMonth  int
	ToYear     int
	ToMonth    int
	ImportAll  bool
}

// DispatchImport validates an import request, creates the job row, and
// enqueues the import task.
func (d *Dispatcher) DispatchImport(ctx context.Context, userID int64, provider string, p ImportParams) (int64, error) {
	if existing, _ := d.Jobs.ActiveImportJob(userID); existing != nil {
		return existing.ID, ErrDuplicateJob
	}

	handle := p.Handle
	if handle == "" {
		h, err := d.Users.ProviderHandle(userID, provider)
		if err != nil {
			return 0, ErrNoProviderHandle
		}
		handle = h
	}

	jobID, err := d.Jobs.CreateImportJob(userID, provider)
	if err != nil {
		// A concurrent dispatch may have won the partial unique index on
		// active jobs; surface that as the usual conflict.
		if existing, _ := d.Jobs.ActiveImportJob(userID); existing != nil {
			return existing.ID, ErrDuplicateJob
		}
		return 0, fmt.Errorf("dispatch: failed to create import job: %v", err)
	}

	args := map[string]interface{}{
		"user_id":    userID,
		"handle":     handle,
		"job_id":     jobID,
		"provider":   provider,
		"from_year":  p.FromYear,
		"from_month": p.FromMonth,
		"to_year":    p.ToYear,
		"to_month":   p.ToMonth,
	}
	if p.ImportAll {
		args["from_year"] = 0
		args["from_month"] = 0
	}

	if err := taskqueue.Enqueue(ctx, d.Imports.Client(), d.Imports.Name(), "import_games", args); err != nil {
		return jobID, fmt.Errorf("dispatch: failed to enqueue import: %v", err)
	}
	return jobID, nil
}

// DispatchBatchAnalyze creates a batch analysis job and enqueues it.
func (d *Dispatcher) DispatchBatchAnalyze(ctx context.Context, userID int64) (int64, error) {
	if existing, _ := d.Jobs.ActiveAnalysisJob(userID); existing != nil {
		return existing.ID, ErrDuplicateJob
	}

	jobID, err := d.Jobs.CreateAnalysisJob(userID)
	if err != nil {
		if existing, _ := d.Jobs.ActiveAnalysisJob(userID); existing != nil {
			return existing.ID, ErrDuplicateJob
		}
		return 0, fmt.Errorf("dispatch: failed to create analysis job: %v", err)
	}

	args := map[string]interface{}{"user_id": userID, "job_id": jobID}
	if err := taskqueue.Enqueue(ctx, d.Queue.Client(), d.Queue.Name(), "batch_analyze", args); err != nil {
		return jobID, fmt.Errorf("dispatch: failed to enqueue batch_analyze: %v", err)
	}
	return jobID, nil
}

// ErrNotOwner is returned when the caller asks to mutate a game that
// belongs to somebody else; handlers translate this to a 404 so game ids
// are not probeable.
var ErrNotOwner = errors.New("dispatch: game does not belong to caller")

// DispatchAnalyzeGame enqueues analysis of a single game. With force set,
// an already-analyzed game is re-analyzed: existing Moves are deleted and the
// game's state reset to in_progress before enqueueing.
func (d *Dispatcher) DispatchAnalyzeGame(ctx context.Context, userID, gameID int64, force bool) (alreadyAnalyzed bool, err error) {
	game, err := d.Games.Get(gameID)
	if err != nil {
		return false, fmt.Errorf("dispatch: game %d not found: %v", gameID, err)
	}
	if game.UserID != userID {
		return false, ErrNotOwner
	}

	if game.AnalysisState == models.AnalysisAnalyzed {
		if !force {
			return true, nil
		}
		if err := d.Games.DeleteMoves(gameID); err != nil {
			return false, err
		}
	}

	if err := d.Games.SetAnalysisState(gameID, models.AnalysisInProgress); err != nil {
		return false, err
	}

	args := map[string]interface{}{"game_id": gameID}
	if err := taskqueue.Enqueue(ctx, d.Queue.Client(), d.Queue.Name(), "analyze_game", args); err != nil {
		return false, fmt.Errorf("dispatch: failed to enqueue analyze_game: %v", err)
	}
	return false, nil
}
