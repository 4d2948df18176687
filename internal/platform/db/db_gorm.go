package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLitePath = "pe_backend.db"
	connectTimeout    = 60 * time.Second
	retryInterval     = 3 * time.Second
)

// Config はデータベース接続設定です。
type Config struct {
	Driver string
	// URL はpostgresのDSNです（DATABASE_URL）。空の場合はDB_*から組み立てます。
	URL      string
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	// SQLitePath はsqliteのファイルパスです。":memory:"も指定できます。
	SQLitePath    string
	RunMigrations bool
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	url := os.Getenv("DATABASE_URL")
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" && (url != "" || os.Getenv("DB_HOST") != "") {
		driver = DriverPostgres
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = defaultSQLitePath
	}
	return Config{
		Driver:        driver,
		URL:           url,
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		SQLitePath:    path,
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// Enabled はデータベースが設定されているかを返します。
// DB_DRIVERもpostgresの接続先も未設定の場合はDBなしで起動します。
func (c Config) Enabled() bool {
	return c.Driver != ""
}

// BuildDSN は設定から接続文字列を生成します。
// postgresではDATABASE_URLが設定されていればそれを優先します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.SQLitePath
	}
	if cfg.URL != "" {
		return cfg.URL
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, port)
}

// Opener はDSNからgorm.DBを開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor はドライバー名に対応するOpenerを返します。
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// ConnectWithRetry はtimeoutまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB はデータベースに接続し、RunMigrationsが有効な場合はmodelsをマイグレーションします。
func OpenDB(cfg Config, models ...any) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, open)
	if err != nil {
		return nil, err
	}
	slog.Info("database connected", "driver", cfg.Driver)

	// sqliteは書き込みが1本に制限され、:memory:は接続ごとに別DBになるため接続を共有する
	if cfg.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.RunMigrations && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// Ping はヘルスチェック用に接続を確認します。
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
