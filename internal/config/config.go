package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
	"youtube-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	YouTubeAPIKey    string
	YouTubeBaseURL   string
	StorePath        string
	ReportPath       string
	TrendPath        string
	ArchiveDBPath    string
	ArchiveEnabled   bool
	ChannelsFile     string
	Timezone         *time.Location
	FetchConcurrency int
	LogLevel         string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		YouTubeAPIKey:  getEnv("YOUTUBE_API_KEY", ""),
		YouTubeBaseURL: getEnv("YOUTUBE_API_BASE_URL", "https://www.googleapis.com/youtube/v3"),
		StorePath:      getEnv("STORE_PATH", "youtube_stats.csv"),
		ReportPath:     getEnv("REPORT_PATH", "index.html"),
		TrendPath:      getEnv("TREND_PATH", "trend.html"),
		ArchiveDBPath:  getEnv("ARCHIVE_DB_PATH", "youtube_stats.db"),
		ChannelsFile:   getEnv("CHANNELS_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	loc, err := time.LoadLocation(getEnv("REPORT_TIMEZONE", constants.DefaultTimezone))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	cfg.ArchiveEnabled, err = strconv.ParseBool(getEnv("ARCHIVE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_ENABLED: %w", err)
	}

	cfg.FetchConcurrency, err = strconv.Atoi(getEnv("FETCH_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_CONCURRENCY: %w", err)
	}
	if cfg.FetchConcurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", cfg.FetchConcurrency)
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	logger.Info().
		Str("store_path", cfg.StorePath).
		Str("report_path", cfg.ReportPath).
		Str("trend_path", cfg.TrendPath).
		Str("archive_db_path", cfg.ArchiveDBPath).
		Bool("archive_enabled", cfg.ArchiveEnabled).
		Str("channels_file", cfg.ChannelsFile).
		Str("timezone", cfg.Timezone.String()).
		Int("fetch_concurrency", cfg.FetchConcurrency).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load, LoadRoster)
