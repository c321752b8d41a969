// Package coordinator implements Component G: progress for an
// AnalysisJob is always recomputed from persistent Game state, never
// incremented in a handler, so at-least-once delivery and out-of-order
// completion can never double-count or desync it.
package coordinator

import (
	"fmt"
	"time"

	"chess-backend/internal/models"
	"chess-backend/internal/store"
)

type Coordinator struct {
	jobs  *store.JobStore
	games *store.GameStore
}

func New(jobs *store.JobStore, games *store.GameStore) *Coordinator {
	return &Coordinator{jobs: jobs, games: games}
}

// AfterAnalyzeGame recomputes progress for every non-terminal AnalysisJob
// of userID that has started, called after each analyze_game success.
func (c *Coordinator) AfterAnalyzeGame(userID int64) error {
	jobs, err := c.jobs.NonTerminalAnalysisJobsWithStartedAt(userID)
	if err != nil {
		return fmt.Errorf("coordinator: failed to load jobs for user %d: %v", userID, err)
	}

	for _, job := range jobs {
		if err := c.recompute(job); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) recompute(job models.AnalysisJob) error {
	if job.TotalGames <= 0 {
		return nil
	}

	count, err := c.games.CountAnalyzedSince(job.UserID, *job.StartedAt)
	if err != nil {
		return fmt.Errorf("coordinator: failed to count analyzed games for job %d: %v", job.ID, err)
	}
	if count > job.TotalGames {
		count = job.TotalGames
	}
	progress := count * 100 / job.TotalGames

	if err := c.jobs.UpdateAnalysisProgress(job.ID, count, progress); err != nil {
		return err
	}

	if count >= job.TotalGames {
		if err := c.jobs.CompleteAnalysisJob(job.ID); err != nil {
			return err
		}
	}
	return nil
}

// Cancel sets job to cancelled and atomically resets every in_progress
// Game of the user back to unanalyzed.
func (c *Coordinator) Cancel(userID, jobID int64) error {
	if err := c.jobs.CancelAnalysisJob(jobID, userID); err != nil {
		return err
	}
	return c.games.ResetInProgressToUnanalyzed(userID)
}

// StuckThreshold is how long after its started_at an ImportJob may still
// sit in processing before the periodic sweep considers it abandoned.
const StuckThreshold = 2 * time.Hour

// SweepStuckImports is a bounded defense-in-depth pass (not the primary
// cancel path, which stays HTTP-driven): it fails import jobs that have
// been processing far longer than any real provider fetch should take,
// which otherwise would hang forever if a worker died mid-task.
func (c *Coordinator) SweepStuckImports(jobs []models.ImportJob) (failed int) {
	cutoff := time.Now().Add(-StuckThreshold)
	for _, job := range jobs {
		if job.Status != models.StatusProcessing || job.StartedAt == nil {
			continue
		}
		if job.StartedAt.After(cutoff) {
			continue
		}
		if err := c.jobs.FailImportJob(job.ID, "stuck: no progress within threshold"); err == nil {
			failed++
		}
	}
	return failed
}
