// Package router はginのルーティングを組み立てます。
package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pe_backend/internal/api"
	peratiohandler "pe_backend/internal/feature/peratio/transport/handler"
	watchlisthandler "pe_backend/internal/feature/watchlist/transport/handler"
	"pe_backend/internal/platform/http/handler"
	jwtmw "pe_backend/internal/platform/jwt"
	"pe_backend/internal/shared/ratelimiter"
)

// Options はルーターの構成です。nilのハンドラーに対応するルートは登録しません。
type Options struct {
	Health  *handler.HealthHandler
	PERatio *peratiohandler.PERatioHandler
	Ingest  *peratiohandler.IngestHandler
	Symbols *watchlisthandler.SymbolHandler

	AdminSecret      string
	CORSAllowOrigins []string
	// APILimiter が設定されている場合、/api を超過時に429で拒否します。
	APILimiter *ratelimiter.RateLimiter
	// StaticDir が設定されている場合、未知のパスにはフロントエンドの静的ファイルを返します。
	StaticDir string
}

// NewRouter はルートを登録したgin.Engineを返します。
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(opts.CORSAllowOrigins)))

	// 認証不要
	// 導通確認用
	if opts.Health != nil {
		r.GET("/healthz", opts.Health.Health)
		r.HEAD("/healthz", opts.Health.Health)
	}

	apiGroup := r.Group("/api")
	if opts.APILimiter != nil {
		apiGroup.Use(rateLimit(opts.APILimiter))
	}
	if opts.PERatio != nil {
		apiGroup.GET("/stock", opts.PERatio.GetStock)
	}
	if opts.Symbols != nil {
		r.GET("/symbols", opts.Symbols.List)
	}

	// 管理者のみ
	// jwtmw.AuthRequired() で scope=admin のトークンを要求
	admin := r.Group("/admin")
	admin.Use(jwtmw.AuthRequired(opts.AdminSecret))
	{
		if opts.Symbols != nil {
			admin.POST("/symbols", opts.Symbols.Track)
			admin.DELETE("/symbols/:code", opts.Symbols.Untrack)
		}
		if opts.Ingest != nil {
			admin.POST("/ingest/:code", opts.Ingest.Ingest)
		}
	}

	if opts.StaticDir != "" {
		r.NoRoute(serveStatic(opts.StaticDir))
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// rateLimit はトークンが無い場合に待たずに429を返します。
func rateLimit(rl *ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "too many requests"})
			return
		}
		c.Next()
	}
}

// serveStatic は dir 以下のファイルを返し、存在しない場合は index.html を返します（SPA向け）。
// /api 以下の未知のパスは404のJSONにします。
func serveStatic(dir string) gin.HandlerFunc {
	root, _ := filepath.Abs(dir)
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not found"})
			return
		}
		full := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+p)))
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			c.File(full)
			return
		}
		c.File(filepath.Join(root, "index.html"))
	}
}
