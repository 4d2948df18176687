// Package ratelimiter は外部API呼び出しやリクエスト受付の頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は、interval あたり limit 回までに呼び出しを制限します。
// 複数のゴルーチンから安全に使用できます。
type RateLimiter struct {
	limiter *rate.Limiter
	limit   int
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limitが0以下の場合は制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	every := rate.Every(interval / time.Duration(limit))
	return &RateLimiter{limiter: rate.NewLimiter(every, limit), limit: limit}
}

// Wait はトークンが得られるまで待機します。ctxがキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Limit() != rate.Inf && rl.limiter.Tokens() < 1 {
		slog.Debug("rate limit reached, waiting", "limit", rl.limit)
	}
	return rl.limiter.Wait(ctx)
}

// Allow は待機せずに呼び出し可能かを返します。
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}
