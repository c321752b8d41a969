package store

import (
	"database/sql"
	"fmt"
	"time"

	"chess-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// JobStore is the repository for ImportJob and AnalysisJob rows. Both
// share the same lifecycle shape, so one repository serves both
// tables rather than duplicating the same dozen methods twice.
type JobStore struct {
	db *sqlx.DB
}

func NewJobStore(db *sqlx.DB) *JobStore {
	return &JobStore{db: db}
}

// ActiveImportJob returns the user's non-terminal ImportJob, if any —
// the dispatcher's idempotency check: at most one non-terminal job per
// user and kind.
func (s *JobStore) ActiveImportJob(userID int64) (*models.ImportJob, error) {
	var j models.ImportJob
	err := s.db.Get(&j,
		`SELECT * FROM import_jobs WHERE user_id = $1 AND status IN ('pending','processing') LIMIT 1`,
		userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active import job for user %d: %v", userID, err)
	}
	return &j, nil
}

func (s *JobStore) ActiveAnalysisJob(userID int64) (*models.AnalysisJob, error) {
	var j models.AnalysisJob
	err := s.db.Get(&j,
		`SELECT * FROM analysis_jobs WHERE user_id = $1 AND status IN ('pending','processing') LIMIT 1`,
		userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active analysis job for user %d: %v", userID, err)
	}
	return &j, nil
}

func (s *JobStore) CreateImportJob(userID int64, provider string) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO import_jobs (user_id, provider, status, progress) VALUES ($1,$2,'pending',0) RETURNING id`,
		userID, provider,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create import job: %v", err)
	}
	return id, nil
}

func (s *JobStore) CreateAnalysisJob(userID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO analysis_jobs (user_id, status, progress) VALUES ($1,'pending',0) RETURNING id`,
		userID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create analysis job: %v", err)
	}
	return id, nil
}

func (s *JobStore) GetImportJob(jobID int64) (*models.ImportJob, error) {
	var j models.ImportJob
	if err := s.db.Get(&j, `SELECT * FROM import_jobs WHERE id = $1`, jobID); err != nil {
		return nil, fmt.Errorf("failed to load import job %d: %v", jobID, err)
	}
	return &j, nil
}

func (s *JobStore) GetAnalysisJob(jobID int64) (*models.AnalysisJob, error) {
	var j models.AnalysisJob
	if err := s.db.Get(&j, `SELECT * FROM analysis_jobs WHERE id = $1`, jobID); err != nil {
		return nil, fmt.Errorf("failed to load analysis job %d: %v", jobID, err)
	}
	return &j, nil
}

func (s *JobStore) StartImportJob(jobID int64) error {
	_, err := s.db.Exec(`UPDATE import_jobs SET status='processing', progress=5, started_at=$2 WHERE id=$1`, jobID, time.Now())
	return wrapJobErr(err, "start import job", jobID)
}

func (s *JobStore) SetImportTotals(jobID int64, total int) error {
	_, err := s.db.Exec(`UPDATE import_jobs SET total_games=$2 WHERE id=$1`, jobID, total)
	return wrapJobErr(err, "set import totals", jobID)
}

func (s *JobStore) UpdateImportProgress(jobID int64, imported, progress int) error {
	_, err := s.db.Exec(`UPDATE import_jobs SET imported_games=$2, progress=$3 WHERE id=$1`, jobID, imported, progress)
	return wrapJobErr(err, "update import progress", jobID)
}

func (s *JobStore) CompleteImportJob(jobID int64) error {
	_, err := s.db.Exec(`UPDATE import_jobs SET status='completed', progress=100, completed_at=$2 WHERE id=$1`, jobID, time.Now())
	return wrapJobErr(err, "complete import job", jobID)
}

// ProcessingImportJobs returns every ImportJob currently marked
// processing, across all users — input to the coordinator's periodic
// stuck-job sweep.
func (s *JobStore) ProcessingImportJobs() ([]models.ImportJob, error) {
	var jobs []models.ImportJob
	err := s.db.Select(&jobs, `SELECT * FROM import_jobs WHERE status = 'processing'`)
	if err != nil {
		return nil, fmt.Errorf("failed to load processing import jobs: %v", err)
	}
	return jobs, nil
}

func (s *JobStore) FailImportJob(jobID int64, message string) error {
	_, err := s.db.Exec(`UPDATE import_jobs SET status='failed', error_message=$2, completed_at=$3 WHERE id=$1`, jobID, message, time.Now())
	return wrapJobErr(err, "fail import job", jobID)
}

func (s *JobStore) StartAnalysisJob(jobID int64) error {
	_, err := s.db.Exec(`UPDATE analysis_jobs SET status='processing', started_at=$2 WHERE id=$1`, jobID, time.Now())
	return wrapJobErr(err, "start analysis job", jobID)
}

func (s *JobStore) SetAnalysisTotals(jobID int64, total int) error {
	_, err := s.db.Exec(`UPDATE analysis_jobs SET total_games=$2 WHERE id=$1`, jobID, total)
	return wrapJobErr(err, "set analysis totals", jobID)
}

func (s *JobStore) CompleteAnalysisJobEmpty(jobID int64) error {
	_, err := s.db.Exec(`UPDATE analysis_jobs SET status='completed', progress=100, completed_at=$2 WHERE id=$1`, jobID, time.Now())
	return wrapJobErr(err, "complete empty analysis job", jobID)
}

// NonTerminalAnalysisJobsWithStartedAt returns every in-flight
// AnalysisJob for a user whose started_at is set — the coordinator reads
// these after every analyze_game success.
func (s *JobStore) NonTerminalAnalysisJobsWithStartedAt(userID int64) ([]models.AnalysisJob, error) {
	var jobs []models.AnalysisJob
	err := s.db.Select(&jobs,
		`SELECT * FROM analysis_jobs WHERE user_id = $1 AND status IN ('pending','processing') AND started_at IS NOT NULL`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load non-terminal analysis jobs for user %d: %v", userID, err)
	}
	return jobs, nil
}

// UpdateAnalysisProgress writes the coordinator's recomputed progress
// snapshot. Progress is never incremented; it's always a fresh
// write of a value derived from the Games table.
func (s *JobStore) UpdateAnalysisProgress(jobID int64, analyzedGames, progress int) error {
	_, err := s.db.Exec(`UPDATE analysis_jobs SET analyzed_games=$2, progress=$3 WHERE id=$1`, jobID, analyzedGames, progress)
	return wrapJobErr(err, "update analysis progress", jobID)
}

func (s *JobStore) CompleteAnalysisJob(jobID int64) error {
	_, err := s.db.Exec(`UPDATE analysis_jobs SET status='completed', progress=100, completed_at=$2 WHERE id=$1`, jobID, time.Now())
	return wrapJobErr(err, "complete analysis job", jobID)
}

// CancelAnalysisJob sets a non-terminal job to cancelled, scoped to the
// owning user so one caller cannot cancel another's job. The caller is
// responsible for also resetting in_progress Games.
func (s *JobStore) CancelAnalysisJob(jobID, userID int64) error {
	_, err := s.db.Exec(
		`UPDATE analysis_jobs SET status='cancelled', completed_at=$3, error_message='Cancelled by user'
		 WHERE id=$1 AND user_id=$2 AND status NOT IN ('completed','failed','cancelled')`,
		jobID, userID, time.Now(),
	)
	return wrapJobErr(err, "cancel analysis job", jobID)
}

func wrapJobErr(err error, action string, jobID int64) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s (id=%d): %v", action, jobID, err)
}
