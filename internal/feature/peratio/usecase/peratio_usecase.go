package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pe_backend/internal/feature/peratio/domain/entity"
)

const (
	// DefaultYears は表示期間が未指定の場合の年数です。
	DefaultYears = 3
	// MaxYears は指定可能な表示期間の上限です。
	MaxYears = 30
	// HistoryPaddingYears は表示期間の先頭でもTTMを算出できるよう、余分に取得する年数です。
	HistoryPaddingYears = 2
)

// PriceProvider は週次の終値系列を取得するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceProvider interface {
	// GetWeeklyPrices はsince以降の週次終値を返します。データがない場合は空スライスを返します。
	GetWeeklyPrices(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error)
}

// EarningsProvider は決算発表のEPS履歴を取得するインターフェースです。
type EarningsProvider interface {
	GetEarnings(ctx context.Context, symbol string) ([]entity.EarningsRecord, error)
}

// peratioUsecase はP/Eレシオ系列を算出するユースケースです。
// 状態を持たないため、複数のリクエストから並行に呼び出せます。
type peratioUsecase struct {
	prices   PriceProvider
	earnings EarningsProvider
	now      func() time.Time
}

// NewPERatioUsecase はperatioUsecaseの新しいインスタンスを生成します。
func NewPERatioUsecase(prices PriceProvider, earnings EarningsProvider) *peratioUsecase {
	return NewPERatioUsecaseWithClock(prices, earnings, time.Now)
}

// NewPERatioUsecaseWithClock は現在時刻の取得関数を指定してインスタンスを生成します。
func NewPERatioUsecaseWithClock(prices PriceProvider, earnings EarningsProvider, now func() time.Time) *peratioUsecase {
	return &peratioUsecase{prices: prices, earnings: earnings, now: now}
}

// NormalizeSymbol は銘柄コードの前後の空白を除き、大文字に揃えます。
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ResolveYears は0以下をDefaultYearsに読み替え、MaxYearsを超える値をエラーにします。
func ResolveYears(years int) (int, error) {
	if years <= 0 {
		return DefaultYears, nil
	}
	if years > MaxYears {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidYears, years, MaxYears)
	}
	return years, nil
}

// GetSeries は指定銘柄の直近years年分のTTM P/Eレシオ系列を返します。
//
// 価格はyears+HistoryPaddingYears年分を取得し、算出後に表示期間で絞り込みます。
// 価格系列が空の場合はErrNoPriceData、プロバイダーの失敗はErrProviderFailureを返します。
// 決算データが不足しているだけの場合はエラーにせず、PERatioが欠損した系列を返します。
func (u *peratioUsecase) GetSeries(ctx context.Context, symbol string, years int) (entity.Series, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return entity.Series{}, ErrInvalidSymbol
	}
	years, err := ResolveYears(years)
	if err != nil {
		return entity.Series{}, err
	}

	now := u.now()
	since := yearsBefore(entity.NormalizeDate(now), years+HistoryPaddingYears)

	// 価格と決算は独立しているので並行に取得する
	var (
		prices   []entity.PricePoint
		earnings []entity.EarningsRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := u.prices.GetWeeklyPrices(gctx, symbol, since)
		if err != nil {
			return fmt.Errorf("%w: price series for %s: %w", ErrProviderFailure, symbol, err)
		}
		prices = ps
		return nil
	})
	g.Go(func() error {
		es, err := u.earnings.GetEarnings(gctx, symbol)
		if err != nil {
			return fmt.Errorf("%w: earnings for %s: %w", ErrProviderFailure, symbol, err)
		}
		earnings = es
		return nil
	})
	if err := g.Wait(); err != nil {
		return entity.Series{}, err
	}

	if len(prices) == 0 {
		return entity.Series{}, fmt.Errorf("%w for %s", ErrNoPriceData, symbol)
	}

	aligned := Align(PreparePrices(prices), PrepareEarnings(earnings))
	points := FilterWindow(aligned, years, now)

	slog.Debug("pe series computed",
		"symbol", symbol,
		"years", years,
		"prices", len(prices),
		"earnings", len(earnings),
		"points", len(points),
	)
	return entity.Series{Symbol: symbol, Points: points}, nil
}
