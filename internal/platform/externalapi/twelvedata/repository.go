package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pe_backend/internal/feature/peratio/domain/entity"
	"pe_backend/internal/feature/peratio/usecase"
	"pe_backend/internal/platform/externalapi/twelvedata/dto"
	infrahttp "pe_backend/internal/platform/http"
)

const (
	weeklyInterval = "1week"
	// maxOutputSize はTwelve Dataが1リクエストで返す最大件数です。
	maxOutputSize = "5000"
	// earningsOutputSize は取得する決算発表の件数です（約25年分）。
	earningsOutputSize = "100"
)

// Limiter は外部APIの呼び出し頻度を制限します。
type Limiter interface {
	Wait(ctx context.Context) error
}

// TwelveDataMarket はTwelve Data外部APIから週次価格と決算発表を取得するプロバイダー実装です。
type TwelveDataMarket struct {
	cfg     Config
	client  *http.Client
	limiter Limiter
	retry   infrahttp.RetryConfig
}

// TwelveDataMarketがプロバイダーのインターフェースを実装していることをコンパイル時に検証します。
var (
	_ usecase.PriceProvider    = (*TwelveDataMarket)(nil)
	_ usecase.EarningsProvider = (*TwelveDataMarket)(nil)
)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
// limiterがnilの場合は呼び出し頻度を制限しません。
func NewTwelveDataMarket(cfg Config, client *http.Client, limiter Limiter) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client, limiter: limiter, retry: infrahttp.DefaultRetry}
}

// GetWeeklyPrices はTwelve Data APIからsince以降の週次終値を取得します。
// 銘柄が見つからない場合は空スライスを返します。
func (t *TwelveDataMarket) GetWeeklyPrices(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", weeklyInterval)
	q.Set("start_date", entity.FormatDate(since))
	q.Set("order", "asc")
	q.Set("outputsize", maxOutputSize)

	raw, found, err := t.fetch(ctx, "time_series", q)
	if err != nil || !found {
		return nil, err
	}

	var body dto.TimeSeriesResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode time_series: %w", err)
	}

	prices := make([]entity.PricePoint, 0, len(body.Values))
	for _, v := range body.Values {
		// 日付をパース
		day, err := entity.ParseDate(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
		// 終値をパース
		c, err := decimal.NewFromString(v.Close)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		if !c.IsPositive() {
			return nil, fmt.Errorf("parse close %q: not positive", v.Close)
		}
		prices = append(prices, entity.PricePoint{Date: day, Close: c})
	}
	return prices, nil
}

// GetEarnings はTwelve Dataの決算発表カレンダーからEPS実績を取得します。
// 発表日ベースのため、時点整合（look-ahead無し）のTTM算出に使えます。
// 未発表でEPSが不明なレコードもそのまま返します（除外は利用側で行います）。
func (t *TwelveDataMarket) GetEarnings(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("outputsize", earningsOutputSize)

	raw, found, err := t.fetch(ctx, "earnings", q)
	if err != nil || !found {
		return nil, err
	}

	var body dto.EarningsResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode earnings: %w", err)
	}

	records := make([]entity.EarningsRecord, 0, len(body.Earnings))
	for _, e := range body.Earnings {
		day, err := entity.ParseDate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("parse earnings date %q: %w", e.Date, err)
		}
		records = append(records, entity.EarningsRecord{Date: day, EPS: e.EPSActual})
	}
	return records, nil
}

// fetch はエンドポイントを呼び出し、レスポンス本文を返します。
// 銘柄が存在しない場合はfound=falseを返します。
func (t *TwelveDataMarket) fetch(ctx context.Context, endpoint string, q url.Values) (raw []byte, found bool, err error) {
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(t.cfg.BaseURL, "/"), endpoint, q.Encode())

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, false, err
		}
	}

	res, err := infrahttp.DoWithRetry(ctx, t.client, t.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return nil, false, fmt.Errorf("twelvedata %s: %w", endpoint, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if res.StatusCode >= 400 {
		return nil, false, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	raw, err = io.ReadAll(res.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if env.Status == "error" {
		if isSymbolNotFound(env) {
			slog.Info("symbol not found upstream", "endpoint", endpoint, "symbol", q.Get("symbol"))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("twelvedata: %s", env.Message)
	}
	return raw, true, nil
}

// isSymbolNotFound はエラーペイロードが「銘柄なし」を示すかを判定します。
func isSymbolNotFound(env dto.Envelope) bool {
	if env.Code == http.StatusNotFound {
		return true
	}
	return env.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(env.Message), "not found")
}
