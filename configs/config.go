package configs

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Engine    EngineConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	Broker    BrokerConfig
	Queue     QueueConfig
	Coach     CoachConfig
}

type AppConfig struct {
	Mode string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type EngineConfig struct {
	BinaryPath      string
	MaxWorkers      int
	DefaultDepth    int
	DefaultTimeMs   int
	MaxDepth        int
	MaxTimeMs       int
	Threads         int
	HashSizeMB      int
	Contempt        int
	AnalysisContempt string
}

type RateLimitConfig struct {
	GameAnalysisPerHour     int
	PositionAnalysisPerHour int
	OpeningLookupsPerHour   int
	PlayerStatsPerHour      int
	ImportPerHour           int
}

// DatabaseConfig holds the persistent store connection string.
type DatabaseConfig struct {
	URL string
}

// BrokerConfig holds the pub/sub + queue broker connection string.
type BrokerConfig struct {
	URL string
}

// QueueConfig sets per-queue worker concurrency. Imports is pinned at 1
// to serialize provider fetches; Analysis is per-process.
type QueueConfig struct {
	ImportsConcurrency  int
	AnalysisConcurrency int
}

// CoachConfig is the optional commentary hook's configuration.
type CoachConfig struct {
	Enabled  bool
	Provider string
	Endpoint string
	Model    string
	APIKey   string
}

func Load() *Config {
	viper.SetDefault("APP_MODE", "debug")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "30s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")

	viper.SetDefault("ENGINE_BINARY_PATH", "stockfish")
	viper.SetDefault("ENGINE_MAX_WORKERS", 4)
	viper.SetDefault("ENGINE_DEFAULT_DEPTH", 15)
	viper.SetDefault("ENGINE_DEFAULT_TIME_MS", 1000)
	viper.SetDefault("ENGINE_MAX_DEPTH", 24)
	viper.SetDefault("ENGINE_MAX_TIME_MS", 30000)
	viper.SetDefault("ENGINE_THREADS", 1)
	viper.SetDefault("ENGINE_HASH_SIZE_MB", 128)
	viper.SetDefault("ENGINE_CONTEMPT", 0)
	viper.SetDefault("ENGINE_ANALYSIS_CONTEMPT", "off")

	// ENGINE_PATH / ENGINE_DEPTH / ENGINE_TIME_LIMIT_MS are the pipeline's
	// own names for the engine budget; they override the ENGINE_* defaults
	// above when set.
	viper.SetDefault("ENGINE_PATH", "")
	viper.SetDefault("ENGINE_DEPTH", 0)
	viper.SetDefault("ENGINE_TIME_LIMIT_MS", 0)

	viper.SetDefault("RATE_LIMIT_GAME_ANALYSIS_PER_HOUR", 10000)
	viper.SetDefault("RATE_LIMIT_POSITION_ANALYSIS_PER_HOUR", 100000)
	viper.SetDefault("RATE_LIMIT_OPENING_LOOKUPS_PER_HOUR", 1000000)
	viper.SetDefault("RATE_LIMIT_PLAYER_STATS_PER_HOUR", 500000)
	viper.SetDefault("RATE_LIMIT_IMPORT_PER_HOUR", 100)

	viper.SetDefault("DATABASE_URL", "postgres://localhost:5432/chess_backend?sslmode=disable")
	viper.SetDefault("BROKER_URL", "redis://localhost:6379/0")
	viper.SetDefault("IMPORTS_QUEUE_CONCURRENCY", 1)
	viper.SetDefault("ANALYSIS_QUEUE_CONCURRENCY", 4)

	viper.SetDefault("COACH_ENABLED", false)
	viper.SetDefault("COACH_PROVIDER", "external_api")
	viper.SetDefault("COACH_ENDPOINT", "")
	viper.SetDefault("COACH_MODEL", "")
	viper.SetDefault("COACH_API_KEY", "")

	viper.AutomaticEnv()

	readTimeout, _ := time.ParseDuration(viper.GetString("SERVER_READ_TIMEOUT"))
	writeTimeout, _ := time.ParseDuration(viper.GetString("SERVER_WRITE_TIMEOUT"))
	shutdownTimeout, _ := time.ParseDuration(viper.GetString("SERVER_SHUTDOWN_TIMEOUT"))

	return &Config{
		App: AppConfig{
			Mode: viper.GetString("APP_MODE"),
		},
		Server: ServerConfig{
			Port:            viper.GetInt("SERVER_PORT"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Engine: EngineConfig{
			BinaryPath:       orDefaultStr(viper.GetString("ENGINE_PATH"), viper.GetString("ENGINE_BINARY_PATH")),
			MaxWorkers:       viper.GetInt("ENGINE_MAX_WORKERS"),
			DefaultDepth:     orDefaultInt(viper.GetInt("ENGINE_DEPTH"), viper.GetInt("ENGINE_DEFAULT_DEPTH")),
			DefaultTimeMs:    orDefaultInt(viper.GetInt("ENGINE_TIME_LIMIT_MS"), viper.GetInt("ENGINE_DEFAULT_TIME_MS")),
			MaxDepth:         viper.GetInt("ENGINE_MAX_DEPTH"),
			MaxTimeMs:        viper.GetInt("ENGINE_MAX_TIME_MS"),
			Threads:          viper.GetInt("ENGINE_THREADS"),
			HashSizeMB:       viper.GetInt("ENGINE_HASH_SIZE_MB"),
			Contempt:         viper.GetInt("ENGINE_CONTEMPT"),
			AnalysisContempt: viper.GetString("ENGINE_ANALYSIS_CONTEMPT"),
		},
		RateLimit: RateLimitConfig{
			GameAnalysisPerHour:     viper.GetInt("RATE_LIMIT_GAME_ANALYSIS_PER_HOUR"),
			PositionAnalysisPerHour: viper.GetInt("RATE_LIMIT_POSITION_ANALYSIS_PER_HOUR"),
			OpeningLookupsPerHour:   viper.GetInt("RATE_LIMIT_OPENING_LOOKUPS_PER_HOUR"),
			PlayerStatsPerHour:      viper.GetInt("RATE_LIMIT_PLAYER_STATS_PER_HOUR"),
			ImportPerHour:           viper.GetInt("RATE_LIMIT_IMPORT_PER_HOUR"),
		},
		Database: DatabaseConfig{
			URL: viper.GetString("DATABASE_URL"),
		},
		Broker: BrokerConfig{
			URL: viper.GetString("BROKER_URL"),
		},
		Queue: QueueConfig{
			ImportsConcurrency:  viper.GetInt("IMPORTS_QUEUE_CONCURRENCY"),
			AnalysisConcurrency: viper.GetInt("ANALYSIS_QUEUE_CONCURRENCY"),
		},
		Coach: CoachConfig{
			Enabled:  viper.GetBool("COACH_ENABLED"),
			Provider: viper.GetString("COACH_PROVIDER"),
			Endpoint: viper.GetString("COACH_ENDPOINT"),
			Model:    viper.GetString("COACH_MODEL"),
			APIKey:   viper.GetString("COACH_API_KEY"),
		},
	}
}

func orDefaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
} 