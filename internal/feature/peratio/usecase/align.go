// Package usecase はTTM P/Eレシオ系列を算出するビジネスロジックを実装します。
package usecase

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"pe_backend/internal/feature/peratio/domain/entity"
)

const (
	// TTMRequiredQuarters はTTM EPSの算出に必要な決算発表の件数です。
	TTMRequiredQuarters = 4
	// RatioPlaces はP/Eレシオを丸める小数点以下の桁数です。
	RatioPlaces = 2
)

// PreparePrices は日付を暦日に正規化し、日付の昇順で安定ソートした新しいスライスを返します。
// 入力スライスは変更しません。
func PreparePrices(prices []entity.PricePoint) []entity.PricePoint {
	out := make([]entity.PricePoint, 0, len(prices))
	for _, p := range prices {
		out = append(out, entity.PricePoint{Date: entity.NormalizeDate(p.Date), Close: p.Close})
	}
	slices.SortStableFunc(out, func(a, b entity.PricePoint) int { return a.Date.Compare(b.Date) })
	return out
}

// PrepareEarnings はEPSが不明なレコードを除外し、日付を正規化して昇順に安定ソートします。
// 同じ日付のレコードは重複排除せず、入力順のまま残します。
func PrepareEarnings(records []entity.EarningsRecord) []entity.EarningsRecord {
	out := make([]entity.EarningsRecord, 0, len(records))
	for _, r := range records {
		if !r.EPS.Valid {
			continue
		}
		out = append(out, entity.EarningsRecord{Date: entity.NormalizeDate(r.Date), EPS: r.EPS})
	}
	slices.SortStableFunc(out, func(a, b entity.EarningsRecord) int { return a.Date.Compare(b.Date) })
	return out
}

// Align は各価格ポイントについて、その日付以前に発表された直近4件のEPS合計（TTM EPS）で
// 終値を割ったP/Eレシオを算出します。
//
// 入力はPreparePrices/PrepareEarningsで整えられている前提です。
// 価格の日付は単調増加なので、対象となる決算は常にプレフィックスとなり、
// 2つのポインタで一度ずつ走査すればよい（O(n+m)）。
// 件数不足やTTM EPSが0以下の場合はエラーではなく、PERatioを欠損値にします。
func Align(prices []entity.PricePoint, earnings []entity.EarningsRecord) []entity.AlignedPoint {
	out := make([]entity.AlignedPoint, 0, len(prices))

	// 直近4件のEPSを保持するリングバッファ
	var window [TTMRequiredQuarters]decimal.Decimal
	seen := 0
	next := 0

	for _, p := range prices {
		for next < len(earnings) && !earnings[next].Date.After(p.Date) {
			if eps := earnings[next].EPS; eps.Valid {
				window[seen%TTMRequiredQuarters] = eps.Decimal
				seen++
			}
			next++
		}

		ap := entity.AlignedPoint{Date: p.Date, Close: p.Close}
		if seen >= TTMRequiredQuarters {
			ttm := decimal.Sum(window[0], window[1:]...)
			if ttm.IsPositive() {
				ap.PERatio = decimal.NewNullDecimal(p.Close.Div(ttm).Round(RatioPlaces))
			}
		}
		out = append(out, ap)
	}
	return out
}

// FilterWindow はnowの暦日からyears年前以降（境界を含む）のポイントだけを順序を保って返します。
func FilterWindow(points []entity.AlignedPoint, years int, now time.Time) []entity.AlignedPoint {
	cutoff := yearsBefore(entity.NormalizeDate(now), years)
	out := make([]entity.AlignedPoint, 0, len(points))
	for _, p := range points {
		if !p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// yearsBefore はdayからyears年戻した暦日を返します。
// 2/29から戻して存在しない日付になる場合は2/28に丸めます。
func yearsBefore(day time.Time, years int) time.Time {
	c := day.AddDate(-years, 0, 0)
	if c.Day() != day.Day() {
		c = c.AddDate(0, 0, -c.Day())
	}
	return c
}
