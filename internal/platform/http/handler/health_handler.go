// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout は依存先1件あたりの確認時間の上限です。
const checkTimeout = 2 * time.Second

// Check は依存先（DB、Redisなど）の疎通確認関数です。
type Check func(ctx context.Context) error

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler は名前付きの依存先チェックを受け取ってHealthHandlerを生成します。
// nilのチェックは無視します。
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	cs := make(map[string]Check, len(checks))
	for name, c := range checks {
		if c != nil {
			cs[name] = c
		}
	}
	return &HealthHandler{checks: cs}
}

// Health はサービスのヘルスチェックに応答します。
// HEAD/OPTIONSは本文なしで応答し、GETでは依存先ごとの状態を返します。
// いずれかの依存先が失敗した場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(status, body)
}
