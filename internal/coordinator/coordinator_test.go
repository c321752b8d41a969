package coordinator

import (
	"testing"
	"time"

	"chess-backend/internal/models"
	"chess-backend/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockCoordinator(t *testing.T) (*Coordinator, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "postgres")
	jobs := store.NewJobStore(sqlxDB)
	games := store.NewGameStore(sqlxDB)
	return New(jobs, games), mock, func() { db.Close() }
}

// TestRecomputeClampsAndCompletes: the analyzed count is clamped to
// total_games, progress is floor(pct), and the job is completed exactly
// when analyzed_games reaches total_games.
func TestRecomputeClampsAndCompletes(t *testing.T) {
	startedAt := time.Now().Add(-time.Hour)

	cases := []struct {
		name           string
		totalGames     int
		rawCount       int
		wantAnalyzed   int
		wantProgress   int
		wantCompletion bool
	}{
		{"partial progress floors down", 7, 3, 3, 42, false},
		{"exact completion", 5, 5, 5, 100, true},
		{"count never exceeds total", 5, 9, 5, 100, true},
		{"zero analyzed so far", 10, 0, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, mock, closeDB := newMockCoordinator(t)
			defer closeDB()

			job := models.AnalysisJob{
				ID: 1, UserID: 42, Status: models.StatusProcessing,
				TotalGames: tc.totalGames, StartedAt: &startedAt,
			}

			jobsRows := sqlmock.NewRows([]string{
				"id", "user_id", "status", "progress", "total_games", "analyzed_games",
				"error_message", "created_at", "started_at", "completed_at",
			}).AddRow(job.ID, job.UserID, job.Status, 0, job.TotalGames, 0, nil, time.Now(), startedAt, nil)
			mock.ExpectQuery("SELECT \\* FROM analysis_jobs WHERE user_id").WithArgs(job.UserID).WillReturnRows(jobsRows)

			countRows := sqlmock.NewRows([]string{"count"}).AddRow(tc.rawCount)
			mock.ExpectQuery("SELECT count\\(\\*\\) FROM games").WithArgs(job.UserID, models.AnalysisAnalyzed, startedAt).WillReturnRows(countRows)

			mock.ExpectExec("UPDATE analysis_jobs SET analyzed_games").
				WithArgs(job.ID, tc.wantAnalyzed, tc.wantProgress).
				WillReturnResult(sqlmock.NewResult(0, 1))

			if tc.wantCompletion {
				mock.ExpectExec("UPDATE analysis_jobs SET status='completed'").
					WithArgs(job.ID, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}

			if err := c.AfterAnalyzeGame(job.UserID); err != nil {
				t.Fatalf("AfterAnalyzeGame returned error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

// TestCancelResetsInProgressGames covers the compensating-action half of
// cancellation: the job is marked cancelled and every in_progress game for
// the user is reset to unanalyzed, in that order.
func TestCancelResetsInProgressGames(t *testing.T) {
	c, mock, closeDB := newMockCoordinator(t)
	defer closeDB()

	mock.ExpectExec("UPDATE analysis_jobs SET status='cancelled'").
		WithArgs(int64(9), int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE games SET analysis_state = \\$2 WHERE user_id = \\$1 AND analysis_state = \\$3").
		WithArgs(int64(7), models.AnalysisUnanalyzed, models.AnalysisInProgress).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := c.Cancel(7, 9); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSweepStuckImportsFailsOnlyPastThreshold(t *testing.T) {
	c, mock, closeDB := newMockCoordinator(t)
	defer closeDB()

	fresh := time.Now().Add(-time.Minute)
	stale := time.Now().Add(-3 * time.Hour)

	jobs := []models.ImportJob{
		{ID: 1, Status: models.StatusProcessing, StartedAt: &fresh},
		{ID: 2, Status: models.StatusProcessing, StartedAt: &stale},
		{ID: 3, Status: models.StatusCompleted, StartedAt: &stale},
	}

	mock.ExpectExec("UPDATE import_jobs SET status='failed'").
		WithArgs(int64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	failed := c.SweepStuckImports(jobs)
	if failed != 1 {
		t.Errorf("SweepStuckImports failed count = %d, want 1", failed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
