package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pe_backend/internal/feature/peratio/domain/entity"
)

var errUpstream = errors.New("upstream unavailable")

// mockPriceProvider はPriceProviderインターフェースのモック実装です。
type mockPriceProvider struct {
	GetWeeklyPricesFunc func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error)
	calls               atomic.Int32
}

func (m *mockPriceProvider) GetWeeklyPrices(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
	m.calls.Add(1)
	if m.GetWeeklyPricesFunc != nil {
		return m.GetWeeklyPricesFunc(ctx, symbol, since)
	}
	return nil, errors.New("GetWeeklyPricesFunc is not implemented")
}

// mockEarningsProvider はEarningsProviderインターフェースのモック実装です。
type mockEarningsProvider struct {
	GetEarningsFunc func(ctx context.Context, symbol string) ([]entity.EarningsRecord, error)
	calls           atomic.Int32
}

func (m *mockEarningsProvider) GetEarnings(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
	m.calls.Add(1)
	if m.GetEarningsFunc != nil {
		return m.GetEarningsFunc(ctx, symbol)
	}
	return nil, errors.New("GetEarningsFunc is not implemented")
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, DefaultYears, false},
		{-4, DefaultYears, false},
		{1, 1, false},
		{MaxYears, MaxYears, false},
		{MaxYears + 1, 0, true},
	}

	for _, tt := range tests {
		got, err := ResolveYears(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidYears, "years=%d", tt.in)
			continue
		}
		require.NoError(t, err, "years=%d", tt.in)
		assert.Equal(t, tt.want, got, "years=%d", tt.in)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AAPL", NormalizeSymbol("  aapl "))
	assert.Equal(t, "BRK.B", NormalizeSymbol("brk.b"))
	assert.Equal(t, "", NormalizeSymbol("   "))
}

// TestPERatioUsecase_GetSeries_Success は取得期間、正規化、表示期間の絞り込みを通しで検証します。
func TestPERatioUsecase_GetSeries_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

	prices := &mockPriceProvider{
		GetWeeklyPricesFunc: func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
			assert.Equal(t, "AAPL", symbol)
			// 表示期間3年 + 余裕2年
			assert.Equal(t, day(2019, 6, 1), since)
			return []entity.PricePoint{
				price(day(2024, 5, 31), "150"),
				price(day(2021, 5, 28), "120"), // 表示期間外
				price(day(2021, 6, 4), "125"),
			}, nil
		},
	}
	earnings := &mockEarningsProvider{
		GetEarningsFunc: func(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
			assert.Equal(t, "AAPL", symbol)
			return []entity.EarningsRecord{
				eps(day(2020, 7, 30), "0.65"),
				eps(day(2020, 10, 29), "0.73"),
				eps(day(2021, 1, 27), "1.68"),
				eps(day(2021, 4, 28), "1.40"),
				eps(day(2024, 5, 2), ""), // 未確定
			}, nil
		},
	}

	uc := NewPERatioUsecaseWithClock(prices, earnings, fixedClock(now))
	series, err := uc.GetSeries(context.Background(), " aapl", 3)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, []string{"2021-06-04", "2024-05-31"}, series.Labels())
	// TTM = 0.65+0.73+1.68+1.40 = 4.46
	assert.Equal(t, []string{"28.03", "33.63"}, ratios(series.Points))
	assert.Equal(t, int32(1), prices.calls.Load())
	assert.Equal(t, int32(1), earnings.calls.Load())
}

func TestPERatioUsecase_GetSeries_DefaultYears(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prices := &mockPriceProvider{
		GetWeeklyPricesFunc: func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
			assert.Equal(t, day(2019, 6, 1), since)
			return []entity.PricePoint{price(day(2024, 5, 31), "1")}, nil
		},
	}
	earnings := &mockEarningsProvider{
		GetEarningsFunc: func(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
			return nil, nil
		},
	}

	series, err := NewPERatioUsecaseWithClock(prices, earnings, fixedClock(now)).GetSeries(context.Background(), "AAPL", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, ratios(series.Points))
}

func TestPERatioUsecase_GetSeries_Errors(t *testing.T) {
	t.Parallel()

	okPrices := func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
		return []entity.PricePoint{price(day(2024, 5, 31), "1")}, nil
	}
	okEarnings := func(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
		return fourQuarters(), nil
	}

	tests := []struct {
		name         string
		symbol       string
		years        int
		pricesFunc   func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error)
		earningsFunc func(ctx context.Context, symbol string) ([]entity.EarningsRecord, error)
		expectedErr  error
		wrapped      error
	}{
		{
			name:   "no price data is not found",
			symbol: "ZZZZ",
			pricesFunc: func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
				return []entity.PricePoint{}, nil
			},
			earningsFunc: okEarnings,
			expectedErr:  ErrNoPriceData,
		},
		{
			name:   "price provider failure",
			symbol: "AAPL",
			pricesFunc: func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
				return nil, errUpstream
			},
			earningsFunc: okEarnings,
			expectedErr:  ErrProviderFailure,
			wrapped:      errUpstream,
		},
		{
			name:       "earnings provider failure is not swallowed",
			symbol:     "AAPL",
			pricesFunc: okPrices,
			earningsFunc: func(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
				return nil, errUpstream
			},
			expectedErr: ErrProviderFailure,
			wrapped:     errUpstream,
		},
		{
			name:         "years over limit",
			symbol:       "AAPL",
			years:        MaxYears + 1,
			pricesFunc:   okPrices,
			earningsFunc: okEarnings,
			expectedErr:  ErrInvalidYears,
		},
		{
			name:         "blank symbol",
			symbol:       "  ",
			pricesFunc:   okPrices,
			earningsFunc: okEarnings,
			expectedErr:  ErrInvalidSymbol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := NewPERatioUsecaseWithClock(
				&mockPriceProvider{GetWeeklyPricesFunc: tt.pricesFunc},
				&mockEarningsProvider{GetEarningsFunc: tt.earningsFunc},
				fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
			)

			_, err := uc.GetSeries(context.Background(), tt.symbol, tt.years)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.wrapped != nil {
				assert.ErrorIs(t, err, tt.wrapped)
				assert.Contains(t, err.Error(), tt.wrapped.Error())
			}
		})
	}
}

// TestPERatioUsecase_GetSeries_Concurrent は状態を共有せず並行に呼び出せることを検証します。
func TestPERatioUsecase_GetSeries_Concurrent(t *testing.T) {
	t.Parallel()

	prices := &mockPriceProvider{
		GetWeeklyPricesFunc: func(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
			return []entity.PricePoint{price(day(2024, 1, 5), "140")}, nil
		},
	}
	earnings := &mockEarningsProvider{
		GetEarningsFunc: func(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
			return fourQuarters(), nil
		},
	}
	uc := NewPERatioUsecaseWithClock(prices, earnings, fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

	const n = 16
	results := make(chan []string, n)
	for i := 0; i < n; i++ {
		go func() {
			s, err := uc.GetSeries(context.Background(), "AAPL", 1)
			if err != nil {
				results <- nil
				return
			}
			results <- ratios(s.Points)
		}()
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, []string{"30.43"}, <-results)
	}
}
