package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chess-backend/configs"
	"chess-backend/internal/coordinator"
	"chess-backend/internal/dispatch"
	"chess-backend/internal/eventbus"
	"chess-backend/internal/handlers"
	"chess-backend/internal/middleware"
	"chess-backend/internal/store"
	"chess-backend/internal/taskqueue"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := configs.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := eventbus.NewClient(cfg.Broker.URL)
	if err != nil {
		logrus.Fatalf("failed to connect to broker: %v", err)
	}
	bus := eventbus.New(redisClient)

	users := store.NewUserStore(db)
	games := store.NewGameStore(db)
	jobs := store.NewJobStore(db)
	coord := coordinator.New(jobs, games)

	defaultQueue := taskqueue.NewQueue(redisClient, "default", cfg.Queue.AnalysisConcurrency)
	importsQueue := taskqueue.NewQueue(redisClient, "imports", 1) // imports are serialized globally
	dispatcher := dispatch.New(users, games, jobs, coord, defaultQueue, importsQueue)

	if cfg.App.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RateLimit(cfg.RateLimit))

	healthHandler := handlers.NewHealthHandler()
	gamesHandler := handlers.NewGamesHandler(dispatcher, jobs, games, store.NewMoveStore(db))
	eventsHandler := handlers.NewEventsHandler(bus)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/stats", healthHandler.Stats)

		games := api.Group("/games")
		games.Use(middleware.Auth())
		{
			games.POST("/import", gamesHandler.ImportChessCom)
			games.POST("/import/lichess", gamesHandler.ImportLichess)
			games.GET("/import/status/:job_id", gamesHandler.ImportStatus)
			games.POST("/:id/analyze", gamesHandler.AnalyzeGame)
			games.GET("/:id/moves", gamesHandler.GameMoves)
			games.DELETE("/:id", gamesHandler.DeleteGame)
			games.POST("/analyze/all", gamesHandler.AnalyzeAll)
			games.GET("/analyze/status/:job_id", gamesHandler.AnalysisStatus)
			games.POST("/analyze/cancel", gamesHandler.CancelAnalysis)
			games.POST("/analyze/cancel/:job_id", gamesHandler.CancelAnalysis)
			games.GET("/events/analysis", eventsHandler.AnalysisStream)
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE streams hold the connection open far past WriteTimeout
	}

	go func() {
		logrus.Infof("starting dispatcher/API server on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
	logrus.Info("server exited")
}
