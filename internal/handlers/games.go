package handlers

import (
	"net/http"
	"strconv"

	"chess-backend/internal/dispatch"
	"chess-backend/internal/middleware"
	"chess-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// GamesHandler is the HTTP boundary for import/analyze dispatch and job
// status queries. Import, analyze and cancel requests are delegated to
// dispatch.Dispatcher; job status, move listing and game deletion go to
// the stores directly.
type GamesHandler struct {
	dispatcher *dispatch.Dispatcher
	jobs       *store.JobStore
	games      *store.GameStore
	moves      *store.MoveStore
}

func NewGamesHandler(dispatcher *dispatch.Dispatcher, jobs *store.JobStore, games *store.GameStore, moves *store.MoveStore) *GamesHandler {
	return &GamesHandler{dispatcher: dispatcher, jobs: jobs, games: games, moves: moves}
}

type importRequest struct {
	Handle     string `json:"handle"`
	FromYear   int    `json:"from_year"`
	FromMonth  int    `json:"from_month"`
	ToYear     int    `json:"to_year"`
	ToMonth    int    `json:"to_month"`
	ImportAll  bool   `json:"import_all"`
}

// ImportChessCom handles POST /api/games/import.
func (h *GamesHandler) ImportChessCom(c *gin.Context) {
	h.dispatchImport(c, "chesscom")
}

// ImportLichess handles POST /api/games/import/lichess.
func (h *GamesHandler) ImportLichess(c *gin.Context) {
	h.dispatchImport(c, "lichess")
}

func (h *GamesHandler) dispatchImport(c *gin.Context, provider string) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	jobID, err := h.dispatcher.DispatchImport(c.Request.Context(), userID, provider, dispatch.ImportParams{
		Handle:    req.Handle,
		FromYear:  req.FromYear,
		FromMonth: req.FromMonth,
		ToYear:    req.ToYear,
		ToMonth:   req.ToMonth,
		ImportAll: req.ImportAll,
	})
	switch err {
	case nil:
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "pending"})
	case dispatch.ErrDuplicateJob:
		c.JSON(http.StatusConflict, gin.H{"job_id": jobID, "status": "processing", "error": "import already in progress"})
	case dispatch.ErrNoProviderHandle:
		c.JSON(http.StatusBadRequest, gin.H{"error": "no handle on file for this provider; pass handle explicitly"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ImportStatus handles GET /api/games/import/status/{job_id}.
func (h *GamesHandler) ImportStatus(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("job_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.jobs.GetImportJob(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// AnalyzeGame handles POST /api/games/{id}/analyze?force={bool}.
func (h *GamesHandler) AnalyzeGame(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	force, _ := strconv.ParseBool(c.Query("force"))

	alreadyAnalyzed, err := h.dispatcher.DispatchAnalyzeGame(c.Request.Context(), userID, gameID, force)
	if err == dispatch.ErrNotOwner {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if alreadyAnalyzed {
		c.JSON(http.StatusOK, gin.H{"game_id": gameID, "status": "analyzed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"game_id": gameID, "status": "in_progress"})
}

// GameMoves handles GET /api/games/{id}/moves, returning the per-move
// analysis records of one analyzed game in half-move order.
func (h *GamesHandler) GameMoves(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	game, err := h.games.Get(gameID)
	if err != nil || game.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	moves, err := h.moves.ForGame(gameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": gameID, "moves": moves})
}

// DeleteGame handles DELETE /api/games/{id}. Moves cascade with the game.
func (h *GamesHandler) DeleteGame(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	deleted, err := h.games.Delete(gameID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": gameID, "status": "deleted"})
}

// AnalyzeAll handles POST /api/games/analyze/all.
func (h *GamesHandler) AnalyzeAll(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}

	jobID, err := h.dispatcher.DispatchBatchAnalyze(c.Request.Context(), userID)
	switch err {
	case nil:
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "pending"})
	case dispatch.ErrDuplicateJob:
		c.JSON(http.StatusConflict, gin.H{"job_id": jobID, "status": "processing", "error": "analysis already in progress"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// AnalysisStatus handles GET /api/games/analyze/status/{job_id}.
func (h *GamesHandler) AnalysisStatus(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("job_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.jobs.GetAnalysisJob(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// CancelAnalysis handles POST /api/games/analyze/cancel[/{job_id}].
func (h *GamesHandler) CancelAnalysis(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}

	var jobID int64
	if raw := c.Param("job_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
			return
		}
		jobID = id
	} else {
		job, err := h.jobs.ActiveAnalysisJob(userID)
		if err != nil || job == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active analysis job"})
			return
		}
		jobID = job.ID
	}

	if err := h.dispatcher.Cancel(userID, jobID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": "cancelled"})
}
