package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"chess-backend/configs"
	"chess-backend/internal/coordinator"
	"chess-backend/internal/eventbus"
	"chess-backend/internal/providers"
	"chess-backend/internal/services"
	"chess-backend/internal/store"
	"chess-backend/internal/tasks"
	"chess-backend/internal/taskqueue"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// sweepSchedule runs the stuck-import sweep hourly, defense-in-depth
// against a worker dying mid-task and leaving a job stuck processing
// forever. It is never the primary cancel path.
const sweepSchedule = "0 * * * *"

func main() {
	cfg := configs.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	redisClient, err := eventbus.NewClient(cfg.Broker.URL)
	if err != nil {
		logrus.Fatalf("failed to connect to broker: %v", err)
	}
	bus := eventbus.New(redisClient)

	users := store.NewUserStore(db)
	games := store.NewGameStore(db)
	moves := store.NewMoveStore(db)
	jobs := store.NewJobStore(db)
	coord := coordinator.New(jobs, games)

	chess := services.NewChessService()
	opening := services.NewOpeningService()
	openingBook := services.NewOpeningBookService()

	coach := services.NewCoachService(services.CoachConfig{
		Enabled:  cfg.Coach.Enabled,
		Provider: cfg.Coach.Provider,
		Endpoint: cfg.Coach.Endpoint,
		Model:    cfg.Coach.Model,
		APIKey:   cfg.Coach.APIKey,
	}, openingBook)

	// imports concurrency is pinned at 1 regardless of config: it is
	// the primary throttle for upstream provider politeness.
	importsQueue := taskqueue.NewQueue(redisClient, "imports", 1)
	defaultQueue := taskqueue.NewQueue(redisClient, "default", cfg.Queue.AnalysisConcurrency)

	handlers := &tasks.Handlers{
		Users:       users,
		Games:       games,
		Moves:       moves,
		Jobs:        jobs,
		Coordinator: coord,
		Bus:         bus,
		Chess:       chess,
		Opening:     opening,
		Coach:       coach,
		EngineCfg: services.EngineDriverConfig{
			BinaryPath: cfg.Engine.BinaryPath,
			Threads:    cfg.Engine.Threads,
			HashMB:     cfg.Engine.HashSizeMB,
			Contempt:   cfg.Engine.Contempt,
		},
		EngineDepth:  cfg.Engine.DefaultDepth,
		EngineTimeMs: cfg.Engine.DefaultTimeMs,
		ChessCom:     providers.NewChessComAdapter(),
		Lichess:      providers.NewLichessAdapter(),
		Queue:        defaultQueue,
	}
	handlers.Register(importsQueue)
	handlers.Register(defaultQueue)

	ctx, cancel := context.WithCancel(context.Background())

	sched := cron.New()
	if _, err := sched.AddFunc(sweepSchedule, func() {
		processing, err := jobs.ProcessingImportJobs()
		if err != nil {
			logrus.WithError(err).Warn("stuck-job sweep: failed to load processing import jobs")
			return
		}
		if failed := coord.SweepStuckImports(processing); failed > 0 {
			logrus.WithField("failed", failed).Info("stuck-job sweep marked jobs failed")
		}
	}); err != nil {
		logrus.Fatalf("failed to schedule stuck-job sweep: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		logrus.WithField("queue", "imports").Info("worker started")
		importsQueue.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		logrus.WithFields(logrus.Fields{"queue": "default", "concurrency": cfg.Queue.AnalysisConcurrency}).Info("worker started")
		defaultQueue.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down worker...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		logrus.Warn("worker shutdown timed out, exiting anyway")
	}
	logrus.Info("worker exited")
}
