package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pe_backend/internal/app/config"
	"pe_backend/internal/app/di"
	"pe_backend/internal/app/router"
	"pe_backend/internal/app/scheduler"
	peratiohandler "pe_backend/internal/feature/peratio/transport/handler"
	watchlisthandler "pe_backend/internal/feature/watchlist/transport/handler"
	infrahttp "pe_backend/internal/platform/http"
	"pe_backend/internal/platform/http/handler"
	"pe_backend/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := infrahttp.RegisterValidators(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.Build(ctx, cfg)
	if err != nil {
		log.Fatal("failed to build application: ", err)
	}
	defer app.Close()

	if cfg.TwelveData.TwelveDataAPIKey == "" {
		slog.Warn("TWELVE_DATA_API_KEY is not set. Upstream requests will be rejected.")
	}
	if cfg.AdminJWTSecret == "" {
		slog.Warn("ADMIN_JWT_SECRET is not set. Admin routes are disabled.")
	}

	// Handler
	opts := router.Options{
		Health:           handler.NewHealthHandler(app.HealthChecks()),
		PERatio:          peratiohandler.NewPERatioHandler(app.Series),
		AdminSecret:      cfg.AdminJWTSecret,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		StaticDir:        cfg.StaticDir,
	}
	if app.Ingest != nil {
		opts.Ingest = peratiohandler.NewIngestHandler(app.Ingest)
	}
	if app.Watchlist != nil {
		opts.Symbols = watchlisthandler.NewSymbolHandler(app.Watchlist)
	}
	if cfg.RateLimitPerMinute > 0 {
		opts.APILimiter = ratelimiter.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	// 定期取り込み
	if cfg.IngestCron != "" && app.Ingest != nil {
		sched, err := scheduler.New(cfg.IngestCron, app.Watchlist, app.Ingest)
		if err != nil {
			log.Fatal(err)
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
