// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pe_backend/internal/feature/peratio/usecase"
	"pe_backend/internal/platform/db"
	"pe_backend/internal/platform/externalapi/twelvedata"
	"pe_backend/internal/platform/redis"
)

const (
	// DataSourceLive はリクエストごとにTwelve Dataから取得します。
	DataSourceLive = "live"
	// DataSourceStore は取り込み済みのデータベースから読み出します。
	DataSourceStore = "store"

	EarningsSourceAnnouncements   = "earnings"
	EarningsSourceIncomeStatement = "income_statement"
)

// Config はサービス全体の設定です。
type Config struct {
	Port           string
	DataSource     string
	EarningsSource string

	DB         db.Config
	Redis      redis.Config
	TwelveData twelvedata.Config

	// CacheRefreshHour はキャッシュが失効する時刻（CacheTimezoneでの時）です。
	CacheRefreshHour int
	CacheTimezone    *time.Location

	AdminJWTSecret string

	// IngestCron が空の場合、定期取り込みは行いません。
	IngestCron  string
	IngestYears int

	// RateLimitPerMinute は /api 全体の1分あたりのリクエスト上限です。0で無制限。
	RateLimitPerMinute int
	CORSAllowOrigins   []string
	StaticDir          string

	LogLevel slog.Level
}

// Load は.envがあれば読み込んだうえで、環境変数から設定を組み立てます。
func Load() (*Config, error) {
	// .envは任意
	_ = godotenv.Load()

	cfg := &Config{
		Port:               envStr("PORT", "10000"),
		DataSource:         strings.ToLower(envStr("DATA_SOURCE", DataSourceLive)),
		EarningsSource:     strings.ToLower(envStr("EARNINGS_SOURCE", EarningsSourceAnnouncements)),
		DB:                 db.LoadConfigFromEnv(),
		Redis:              redis.LoadConfig(),
		TwelveData:         twelvedata.LoadConfig(),
		CacheRefreshHour:   envInt("CACHE_REFRESH_HOUR", 6),
		AdminJWTSecret:     envStr("ADMIN_JWT_SECRET", ""),
		IngestCron:         envStr("INGEST_CRON", ""),
		IngestYears:        envInt("INGEST_YEARS", usecase.DefaultIngestYears),
		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 0),
		CORSAllowOrigins:   envList("CORS_ALLOW_ORIGINS", []string{"*"}),
		StaticDir:          envStr("STATIC_DIR", ""),
		LogLevel:           envLogLevel("LOG_LEVEL", slog.LevelInfo),
	}

	loc, err := time.LoadLocation(envStr("CACHE_TIMEZONE", "America/New_York"))
	if err != nil {
		return nil, fmt.Errorf("CACHE_TIMEZONE: %w", err)
	}
	cfg.CacheTimezone = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の組み合わせを検証します。
func (c *Config) Validate() error {
	switch c.DataSource {
	case DataSourceLive:
	case DataSourceStore:
		if !c.DB.Enabled() {
			return fmt.Errorf("DATA_SOURCE=%s requires a database (set DB_DRIVER or DATABASE_URL)", c.DataSource)
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}

	switch c.EarningsSource {
	case EarningsSourceAnnouncements, EarningsSourceIncomeStatement:
	default:
		return fmt.Errorf("unknown EARNINGS_SOURCE %q", c.EarningsSource)
	}

	if c.CacheRefreshHour < 0 || c.CacheRefreshHour > 23 {
		return fmt.Errorf("CACHE_REFRESH_HOUR must be 0-23, got %d", c.CacheRefreshHour)
	}
	if c.IngestCron != "" && !c.DB.Enabled() {
		return fmt.Errorf("INGEST_CRON requires a database")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring non-integer env value", "key", key, "value", v)
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envLogLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return l
}
