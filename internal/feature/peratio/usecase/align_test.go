package usecase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pe_backend/internal/feature/peratio/domain/entity"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func price(t time.Time, close string) entity.PricePoint {
	return entity.PricePoint{Date: t, Close: decimal.RequireFromString(close)}
}

func eps(t time.Time, v string) entity.EarningsRecord {
	if v == "" {
		return entity.EarningsRecord{Date: t}
	}
	return entity.EarningsRecord{Date: t, EPS: decimal.NewNullDecimal(decimal.RequireFromString(v))}
}

// ratios はPERatioを文字列に変換します。欠損は""になります。
func ratios(points []entity.AlignedPoint) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		if !p.PERatio.Valid {
			out = append(out, "")
			continue
		}
		out = append(out, p.PERatio.Decimal.StringFixed(RatioPlaces))
	}
	return out
}

func fourQuarters() []entity.EarningsRecord {
	return []entity.EarningsRecord{
		eps(day(2023, 2, 1), "1.0"),
		eps(day(2023, 5, 1), "1.1"),
		eps(day(2023, 8, 1), "1.2"),
		eps(day(2023, 11, 1), "1.3"),
	}
}

// TestAlign_Example は4四半期のEPS合計4.6に対し終値140でP/Eが30.43になることを検証します。
func TestAlign_Example(t *testing.T) {
	t.Parallel()

	prices := []entity.PricePoint{
		price(day(2023, 10, 27), "130"),
		price(day(2023, 11, 3), "140"),
	}
	got := Align(PreparePrices(prices), PrepareEarnings(fourQuarters()))

	require.Len(t, got, 2)
	assert.Equal(t, []string{"", "30.43"}, ratios(got))
	assert.True(t, got[1].Close.Equal(decimal.RequireFromString("140")))
}

// TestAlign_NoLookAhead は価格日より後に発表された決算を使わないことを検証します。
func TestAlign_NoLookAhead(t *testing.T) {
	t.Parallel()

	earnings := append(fourQuarters(), eps(day(2024, 2, 1), "100"))
	prices := []entity.PricePoint{
		price(day(2024, 1, 31), "140"), // 2024-02-01の決算はまだ発表されていない
		price(day(2024, 2, 1), "140"),  // 発表日当日は含む
	}

	got := Align(PreparePrices(prices), PrepareEarnings(earnings))
	// 1.1+1.2+1.3+100 = 103.6
	assert.Equal(t, []string{"30.43", "1.35"}, ratios(got))
}

func TestAlign_FewerThanFourQuarters(t *testing.T) {
	t.Parallel()

	earnings := fourQuarters()[:3]
	prices := []entity.PricePoint{price(day(2024, 1, 5), "100")}

	got := Align(PreparePrices(prices), PrepareEarnings(earnings))
	assert.Equal(t, []string{""}, ratios(got))
}

// TestAlign_NonPositiveTTM はTTM EPSが0または負の場合にP/Eを欠損とすることを検証します。
func TestAlign_NonPositiveTTM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		eps  []string
	}{
		{"zero sum", []string{"1", "-1", "0.5", "-0.5"}},
		{"negative sum", []string{"-1", "-0.2", "0.1", "0.3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var earnings []entity.EarningsRecord
			for i, v := range tt.eps {
				earnings = append(earnings, eps(day(2023, time.Month(1+3*i), 1), v))
			}
			got := Align(PreparePrices([]entity.PricePoint{price(day(2024, 1, 5), "50")}), PrepareEarnings(earnings))
			assert.Equal(t, []string{""}, ratios(got))
		})
	}
}

// TestAlign_Rounding は小数点以下2桁に四捨五入（0から遠い方向）されることを検証します。
func TestAlign_Rounding(t *testing.T) {
	t.Parallel()

	earnings := []entity.EarningsRecord{
		eps(day(2023, 1, 1), "1"),
		eps(day(2023, 4, 1), "1"),
		eps(day(2023, 7, 1), "1"),
		eps(day(2023, 10, 1), "5"),
	}
	prices := []entity.PricePoint{
		price(day(2024, 1, 1), "100.5"), // 100.5/8 = 12.5625
		price(day(2024, 1, 8), "100.4"), // 100.4/8 = 12.55
		price(day(2024, 1, 15), "0.36"), // 0.36/8 = 0.045 -> 0.05
	}

	got := Align(PreparePrices(prices), PrepareEarnings(earnings))
	assert.Equal(t, []string{"12.56", "12.55", "0.05"}, ratios(got))
}

// TestAlign_SkipsUnknownEPS はEPS不明のレコードが4件の計数に含まれないことを検証します。
func TestAlign_SkipsUnknownEPS(t *testing.T) {
	t.Parallel()

	earnings := append(fourQuarters()[:3], eps(day(2023, 10, 1), ""))
	got := Align(PreparePrices([]entity.PricePoint{price(day(2024, 1, 5), "100")}), PrepareEarnings(earnings))
	assert.Equal(t, []string{""}, ratios(got))

	// Align単体でも不明なEPSは数えない
	got = Align([]entity.PricePoint{price(day(2024, 1, 5), "100")}, earnings)
	assert.Equal(t, []string{""}, ratios(got))
}

// TestAlign_DuplicateDates は同じ発表日の決算を重複排除せずにどちらも数えることを検証します。
func TestAlign_DuplicateDates(t *testing.T) {
	t.Parallel()

	earnings := []entity.EarningsRecord{
		eps(day(2023, 5, 1), "1"),
		eps(day(2023, 8, 1), "1"),
		eps(day(2023, 8, 1), "1"),
		eps(day(2023, 11, 1), "2"),
	}
	got := Align(PreparePrices([]entity.PricePoint{price(day(2023, 11, 1), "50")}), PrepareEarnings(earnings))
	assert.Equal(t, []string{"10.00"}, ratios(got))
}

func TestAlign_EmptyInputs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Align(nil, PrepareEarnings(fourQuarters())))

	got := Align(PreparePrices([]entity.PricePoint{price(day(2024, 1, 5), "100")}), nil)
	assert.Equal(t, []string{""}, ratios(got))
}

// TestAlign_TimezoneInsensitive は時刻やオフセットに関わらず暦日で比較することを検証します。
func TestAlign_TimezoneInsensitive(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	ny := time.FixedZone("EST", -5*60*60)

	earnings := fourQuarters()
	// 最後の決算は2023-11-01の夜（ニューヨーク時間）に発表
	earnings[3].Date = time.Date(2023, 11, 1, 21, 30, 0, 0, ny)

	prices := []entity.PricePoint{
		// 東京の早朝。UTCでは前日だが暦日は2023-11-01
		{Date: time.Date(2023, 11, 1, 6, 0, 0, 0, tokyo), Close: decimal.RequireFromString("140")},
	}

	got := Align(PreparePrices(prices), PrepareEarnings(earnings))
	require.Len(t, got, 1)
	assert.Equal(t, day(2023, 11, 1), got[0].Date)
	assert.Equal(t, []string{"30.43"}, ratios(got))
}

// TestAlign_Idempotent は同じ入力に対して同じ結果を返し、入力を変更しないことを検証します。
func TestAlign_Idempotent(t *testing.T) {
	t.Parallel()

	prices := []entity.PricePoint{
		price(day(2024, 1, 12), "141"),
		price(day(2024, 1, 5), "140"),
	}
	earnings := []entity.EarningsRecord{
		eps(day(2023, 11, 1), "1.3"),
		eps(day(2023, 2, 1), "1.0"),
		eps(day(2023, 8, 1), "1.2"),
		eps(day(2023, 5, 1), "1.1"),
	}
	pricesCopy := append([]entity.PricePoint(nil), prices...)
	earningsCopy := append([]entity.EarningsRecord(nil), earnings...)

	first := Align(PreparePrices(prices), PrepareEarnings(earnings))
	second := Align(PreparePrices(prices), PrepareEarnings(earnings))

	assert.Equal(t, ratios(first), ratios(second))
	assert.Equal(t, []string{"30.43", "30.65"}, ratios(first))
	assert.Equal(t, day(2024, 1, 5), first[0].Date)
	assert.Equal(t, pricesCopy, prices)
	assert.Equal(t, earningsCopy, earnings)
}

func TestPreparePrices_StableSort(t *testing.T) {
	t.Parallel()

	prices := []entity.PricePoint{
		price(day(2024, 1, 12), "3"),
		price(time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC), "1"),
		price(day(2024, 1, 5), "2"),
	}

	got := PreparePrices(prices)
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].Close.String())
	assert.Equal(t, "2", got[1].Close.String())
	assert.Equal(t, "3", got[2].Close.String())
	assert.Equal(t, day(2024, 1, 5), got[0].Date)
}

func TestPrepareEarnings_DropsUnknown(t *testing.T) {
	t.Parallel()

	got := PrepareEarnings([]entity.EarningsRecord{
		eps(day(2024, 2, 1), ""),
		eps(day(2023, 11, 1), "1.3"),
	})
	require.Len(t, got, 1)
	assert.Equal(t, day(2023, 11, 1), got[0].Date)
}

// TestFilterWindow は境界日を含めてyears年分のポイントを残すことを検証します。
func TestFilterWindow(t *testing.T) {
	t.Parallel()

	points := []entity.AlignedPoint{
		{Date: day(2021, 5, 28)},
		{Date: day(2021, 6, 1)},
		{Date: day(2022, 1, 7)},
		{Date: day(2024, 5, 31)},
	}
	now := time.Date(2024, 6, 1, 18, 45, 0, 0, time.UTC)

	got := FilterWindow(points, 3, now)
	require.Len(t, got, 3)
	assert.Equal(t, day(2021, 6, 1), got[0].Date)
	assert.Equal(t, day(2024, 5, 31), got[2].Date)

	assert.Empty(t, FilterWindow(nil, 3, now))
}

func TestYearsBefore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		day   time.Time
		years int
		want  time.Time
	}{
		{"plain", day(2024, 6, 1), 3, day(2021, 6, 1)},
		{"leap day clamps to feb 28", day(2024, 2, 29), 1, day(2023, 2, 28)},
		{"leap day to leap day", day(2024, 2, 29), 4, day(2020, 2, 29)},
		{"zero years", day(2024, 6, 1), 0, day(2024, 6, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, yearsBefore(tt.day, tt.years))
		})
	}
}
