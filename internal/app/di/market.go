// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"pe_backend/internal/app/config"
	"pe_backend/internal/feature/peratio/usecase"
	"pe_backend/internal/platform/externalapi/twelvedata"
	infrahttp "pe_backend/internal/platform/http"
	"pe_backend/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured TwelveDataMarket with HTTP client and rate limiter.
func NewMarket(cfg twelvedata.Config) *twelvedata.TwelveDataMarket {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	limiter := ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute)
	return twelvedata.NewTwelveDataMarket(cfg, httpClient, limiter)
}

// NewLiveEarnings returns the upstream earnings source selected by EARNINGS_SOURCE.
// The two sources are never merged.
func NewLiveEarnings(source string, market *twelvedata.TwelveDataMarket) usecase.EarningsProvider {
	if source == config.EarningsSourceIncomeStatement {
		return twelvedata.NewIncomeStatementEarnings(market)
	}
	return market
}
