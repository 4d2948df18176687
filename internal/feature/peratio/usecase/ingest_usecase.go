package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pe_backend/internal/feature/peratio/domain/entity"
)

// DefaultIngestYears は取り込み時に取得する価格履歴の年数です。
const DefaultIngestYears = 12

// PriceStore は週次終値を永続化するリポジトリのインターフェースです。
type PriceStore interface {
	UpsertBatch(ctx context.Context, symbol string, prices []entity.PricePoint) error
}

// EarningsStore は決算履歴を永続化するリポジトリのインターフェースです。
type EarningsStore interface {
	// ReplaceAll は銘柄の決算履歴をrecordsで置き換えます。
	ReplaceAll(ctx context.Context, symbol string, records []entity.EarningsRecord) error
}

// CacheInvalidator は銘柄に関連するキャッシュを破棄します。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, symbol string) error
}

// IngestUsecase は外部APIから価格と決算を取得し、データベースに永続化するユースケースです。
type IngestUsecase struct {
	prices        PriceProvider
	earnings      EarningsProvider
	priceStore    PriceStore
	earningsStore EarningsStore
	invalidator   CacheInvalidator
	years         int
	now           func() time.Time
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
// invalidatorはnilでも構いません。yearsが0以下の場合はDefaultIngestYearsを使用します。
func NewIngestUsecase(prices PriceProvider, earnings EarningsProvider, priceStore PriceStore,
	earningsStore EarningsStore, invalidator CacheInvalidator, years int) *IngestUsecase {
	if years <= 0 {
		years = DefaultIngestYears
	}
	return &IngestUsecase{
		prices:        prices,
		earnings:      earnings,
		priceStore:    priceStore,
		earningsStore: earningsStore,
		invalidator:   invalidator,
		years:         years,
		now:           time.Now,
	}
}

// IngestSymbol は1銘柄の価格と決算を取得し、保存します。
// 外部APIのレート制限はプロバイダー側で行います。
func (iu *IngestUsecase) IngestSymbol(ctx context.Context, symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return ErrInvalidSymbol
	}
	since := yearsBefore(entity.NormalizeDate(iu.now()), iu.years)

	prices, err := iu.prices.GetWeeklyPrices(ctx, symbol, since)
	if err != nil {
		return fmt.Errorf("%w: price series for %s: %w", ErrProviderFailure, symbol, err)
	}
	if len(prices) == 0 {
		return fmt.Errorf("%w for %s", ErrNoPriceData, symbol)
	}

	earnings, err := iu.earnings.GetEarnings(ctx, symbol)
	if err != nil {
		return fmt.Errorf("%w: earnings for %s: %w", ErrProviderFailure, symbol, err)
	}

	if err := iu.priceStore.UpsertBatch(ctx, symbol, PreparePrices(prices)); err != nil {
		return fmt.Errorf("store prices for %s: %w", symbol, err)
	}
	if err := iu.earningsStore.ReplaceAll(ctx, symbol, PrepareEarnings(earnings)); err != nil {
		return fmt.Errorf("store earnings for %s: %w", symbol, err)
	}

	if iu.invalidator != nil {
		// キャッシュの破棄はベストエフォート
		if err := iu.invalidator.Invalidate(ctx, symbol); err != nil {
			slog.Warn("failed to invalidate cache", "symbol", symbol, "error", err)
		}
	}
	slog.Info("ingested", "symbol", symbol, "prices", len(prices), "earnings", len(earnings))
	return nil
}

// IngestAll は全銘柄を順に取り込みます。
// 1銘柄で失敗しても処理を止めずにログに出力し、失敗した銘柄数を返します。
// コンテキストがキャンセルされた場合はその時点で中断します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) (failed int, err error) {
	for _, s := range symbols {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if err := iu.IngestSymbol(ctx, s); err != nil {
			if ctx.Err() != nil {
				return failed, ctx.Err()
			}
			slog.Error("failed to ingest data", "symbol", s, "error", err)
			failed++
			continue
		}
	}
	return failed, nil
}
