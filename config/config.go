package config

import (
	"log/slog"
	"os"
	"strconv"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

type AppConfig struct {
	PostgresURL string
	RedisURL    string
	ProxyURL    string
	AppEnv      string // EnvDevelopment or EnvProduction
	LogLevel    slog.Level

	// Upstream feed settings.
	RedditBaseURL   string
	RedditUserAgent string
	FetchLimit      int

	// Ingestion tuning. The stale threshold is the number of consecutive
	// empty fetches after which the stored cursor is considered dead.
	StaleThreshold       int
	PostFetchInterval    int // seconds
	CommentFetchInterval int // seconds

	// Matching tuning.
	KeywordLookbackMinutes int
	ScanBatchSize          int

	ListenAddr string
}

var Config AppConfig

func LoadConfig() {
	cfg := AppConfig{}

	cfg.AppEnv = os.Getenv("APP_ENV")
	cfg.PostgresURL = loadRequired("POSTGRES_URL")
	cfg.RedisURL = loadRequired("REDIS_URL")
	cfg.ProxyURL = loadOptional("PROXY_URL", "")

	cfg.RedditBaseURL = loadOptional("REDDIT_BASE_URL", "https://www.reddit.com")
	cfg.RedditUserAgent = loadOptional("REDDIT_USER_AGENT", "redditwatch:v1.0.0")
	cfg.FetchLimit = loadOptionalInt("REDDIT_FETCH_LIMIT", 100)

	cfg.StaleThreshold = loadOptionalInt("STALE_ID_THRESHOLD", 10)
	cfg.PostFetchInterval = loadOptionalInt("POST_FETCH_INTERVAL", 300)
	cfg.CommentFetchInterval = loadOptionalInt("COMMENT_FETCH_INTERVAL", 360)

	cfg.KeywordLookbackMinutes = loadOptionalInt("KEYWORD_LOOKBACK_MINUTES", 30)
	cfg.ScanBatchSize = loadOptionalInt("SCAN_BATCH_SIZE", 1000)

	cfg.ListenAddr = loadOptional("LISTEN_ADDR", ":8080")

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	Config = cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Required env var not set", "key", key)
		os.Exit(1)
	}
	return value
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func loadOptionalInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Error("Invalid int env var, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func (c AppConfig) IsProduction() bool {
	return Config.AppEnv == EnvProduction
}
