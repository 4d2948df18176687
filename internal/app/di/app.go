package di

import (
	"context"
	"log/slog"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"pe_backend/internal/app/config"
	peratioadapters "pe_backend/internal/feature/peratio/adapters"
	peratiohandler "pe_backend/internal/feature/peratio/transport/handler"
	peratiousecase "pe_backend/internal/feature/peratio/usecase"
	watchlistadapters "pe_backend/internal/feature/watchlist/adapters"
	watchlistentity "pe_backend/internal/feature/watchlist/domain/entity"
	watchlistusecase "pe_backend/internal/feature/watchlist/usecase"
	"pe_backend/internal/platform/cache"
	"pe_backend/internal/platform/db"
	"pe_backend/internal/platform/externalapi/twelvedata"
	"pe_backend/internal/platform/http/handler"
	infraredis "pe_backend/internal/platform/redis"
)

// App holds the wired components shared by the server and the CLI.
// DB-backed parts (Ingest, Watchlist) are nil when no database is configured.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redisv9.Client
	Market *twelvedata.TwelveDataMarket
	Cache  *cache.MarketDataCache

	Series    peratiohandler.PERatioUsecase
	Ingest    *peratiousecase.IngestUsecase
	Watchlist *watchlistusecase.WatchlistUsecase
}

// Models returns every gorm model that needs a table.
func Models() []any {
	return []any{
		&peratioadapters.PriceModel{},
		&peratioadapters.EarningsModel{},
		&watchlistentity.TrackedSymbol{},
	}
}

// Build connects to the configured backends and wires the usecases.
// Redis is optional: when it is not configured or unreachable the service runs without cache.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// db
	if cfg.DB.Enabled() {
		gdb, err := db.OpenDB(cfg.DB, Models()...)
		if err != nil {
			return nil, err
		}
		app.DB = gdb
	}

	// Redis
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			app.Redis = rdb
		}
	}
	app.Cache = cache.NewMarketDataCache(app.Redis, 0, "marketdata").
		ExpireAtHour(cfg.CacheRefreshHour, cfg.CacheTimezone)

	app.Market = NewMarket(cfg.TwelveData)
	liveEarnings := NewLiveEarnings(cfg.EarningsSource, app.Market)

	// Series: live or store, both behind the cache
	var (
		prices   peratiousecase.PriceProvider    = app.Market
		earnings peratiousecase.EarningsProvider = liveEarnings
	)
	if app.DB != nil {
		priceRepo := peratioadapters.NewPriceRepository(app.DB)
		earningsRepo := peratioadapters.NewEarningsRepository(app.DB)
		if cfg.DataSource == config.DataSourceStore {
			prices, earnings = priceRepo, earningsRepo
		}
		app.Ingest = peratiousecase.NewIngestUsecase(app.Market, liveEarnings, priceRepo, earningsRepo, app.Cache, cfg.IngestYears)
		app.Watchlist = watchlistusecase.NewWatchlistUsecase(watchlistadapters.NewSymbolRepository(app.DB))
	}
	app.Series = peratiousecase.NewPERatioUsecase(app.Cache.Prices(prices), app.Cache.Earnings(earnings))

	slog.Info("application wired",
		"data_source", cfg.DataSource,
		"earnings_source", cfg.EarningsSource,
		"database", app.DB != nil,
		"cache", app.Redis != nil,
	)
	return app, nil
}

// HealthChecks returns the dependency checks reported by /healthz.
func (a *App) HealthChecks() map[string]handler.Check {
	checks := map[string]handler.Check{}
	if a.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}
	}
}
