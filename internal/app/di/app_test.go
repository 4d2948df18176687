package di

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pe_backend/internal/app/config"
	peratioadapters "pe_backend/internal/feature/peratio/adapters"
	"pe_backend/internal/platform/db"
	"pe_backend/internal/platform/externalapi/twelvedata"
)

func testConfig(dataSource string, withDB bool) *config.Config {
	cfg := &config.Config{
		DataSource:       dataSource,
		EarningsSource:   config.EarningsSourceAnnouncements,
		TwelveData:       twelvedata.Config{BaseURL: "http://127.0.0.1:0", Timeout: time.Second},
		CacheRefreshHour: 6,
		CacheTimezone:    time.UTC,
	}
	if withDB {
		cfg.DB = db.Config{Driver: db.DriverSQLite, SQLitePath: ":memory:", RunMigrations: true}
	}
	return cfg
}

func TestNewLiveEarnings(t *testing.T) {
	t.Parallel()

	market := NewMarket(twelvedata.Config{Timeout: time.Second, RequestsPerMinute: 8})

	assert.Same(t, market, NewLiveEarnings(config.EarningsSourceAnnouncements, market))
	_, ok := NewLiveEarnings(config.EarningsSourceIncomeStatement, market).(*twelvedata.IncomeStatementEarnings)
	assert.True(t, ok)
}

// TestBuild_WithoutDatabase はDBなしでもlive構成で起動でき、DB依存の機能が無効になることを検証します。
func TestBuild_WithoutDatabase(t *testing.T) {
	t.Parallel()

	app, err := Build(context.Background(), testConfig(config.DataSourceLive, false))
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.DB)
	assert.Nil(t, app.Redis)
	assert.NotNil(t, app.Series)
	assert.Nil(t, app.Ingest)
	assert.Nil(t, app.Watchlist)
	assert.Empty(t, app.HealthChecks())
}

// TestBuild_StoreReadsDatabase はstore構成で取り込み済みデータから系列を算出することを検証します。
func TestBuild_StoreReadsDatabase(t *testing.T) {
	t.Parallel()

	app, err := Build(context.Background(), testConfig(config.DataSourceStore, true))
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.DB)
	require.NotNil(t, app.Ingest)
	require.NotNil(t, app.Watchlist)

	for _, m := range Models() {
		assert.True(t, app.DB.Migrator().HasTable(m))
	}

	checks := app.HealthChecks()
	require.Contains(t, checks, "database")
	assert.NoError(t, checks["database"](context.Background()))

	ctx := context.Background()
	// 直近の日付で価格を保存（表示期間に入るように）
	now := time.Now().UTC()
	require.NoError(t, app.DB.Create(&peratioadapters.PriceModel{
		Symbol: "AAPL",
		Date:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -7),
		Close:  mustDecimal(t, "140"),
	}).Error)

	series, err := app.Series.GetSeries(ctx, "AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, series.Points, 1)

	_, err = app.Series.GetSeries(ctx, "ZZZZ", 1)
	assert.Error(t, err)

	s, err := app.Watchlist.Track(ctx, "aapl", "Apple")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s.Code)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
