package twelvedata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"pe_backend/internal/feature/peratio/domain/entity"
	"pe_backend/internal/feature/peratio/usecase"
	"pe_backend/internal/platform/externalapi/twelvedata/dto"
)

// EPSFieldPaths は四半期損益計算書の行からEPSを読み取るJSONPathの優先順位リストです。
// 希薄化後EPSを優先し、なければ基本EPSを使います。
var EPSFieldPaths = []string{
	"$.eps_diluted",
	"$.eps_basic",
}

// IncomeStatementEarnings は四半期損益計算書からEPS履歴を取得するEarningsProvider実装です。
//
// 日付は決算期末日（fiscal_date）であり発表日ではないため、履歴も浅く、
// 時点整合の観点では決算発表カレンダー（TwelveDataMarket.GetEarnings）に劣ります。
// 設定で明示的に選択された場合のみ使用し、もう一方のソースと混在させません。
type IncomeStatementEarnings struct {
	market *TwelveDataMarket
	paths  []string
}

var _ usecase.EarningsProvider = (*IncomeStatementEarnings)(nil)

// NewIncomeStatementEarnings はIncomeStatementEarningsの新しいインスタンスを生成します。
func NewIncomeStatementEarnings(market *TwelveDataMarket) *IncomeStatementEarnings {
	return &IncomeStatementEarnings{market: market, paths: EPSFieldPaths}
}

// GetEarnings は四半期損益計算書の各行をEarningsRecordに変換します。
// EPSの項目はレスポンスごとに一度だけ決定し、その項目を持たない行はEPS不明として返します。
func (s *IncomeStatementEarnings) GetEarnings(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("period", "quarterly")

	raw, found, err := s.market.fetch(ctx, "income_statement", q)
	if err != nil || !found {
		return nil, err
	}

	var body dto.IncomeStatementResponse
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode income_statement: %w", err)
	}

	path, ok := s.resolvePath(body.IncomeStatement)
	if !ok {
		slog.Warn("no eps field in income statement", "symbol", symbol, "candidates", s.paths)
	}

	records := make([]entity.EarningsRecord, 0, len(body.IncomeStatement))
	for _, row := range body.IncomeStatement {
		fiscal, _ := row["fiscal_date"].(string)
		day, err := entity.ParseDate(fiscal)
		if err != nil {
			return nil, fmt.Errorf("parse fiscal_date %q: %w", fiscal, err)
		}
		rec := entity.EarningsRecord{Date: day}
		if ok {
			rec.EPS = lookupDecimal(path, row)
		}
		records = append(records, rec)
	}
	return records, nil
}

// resolvePath は優先順位の高い順に、いずれかの行で値を持つ最初のパスを返します。
func (s *IncomeStatementEarnings) resolvePath(rows []map[string]any) (string, bool) {
	for _, p := range s.paths {
		for _, row := range rows {
			if lookupDecimal(p, row).Valid {
				return p, true
			}
		}
	}
	return "", false
}

// lookupDecimal はJSONPathで値を取り出し、数値であればdecimalに変換します。
func lookupDecimal(path string, row map[string]any) decimal.NullDecimal {
	v, err := jsonpath.Get(path, row)
	if err != nil {
		return decimal.NullDecimal{}
	}
	// jsonpathは単一の値を配列で返すことがあるため、先頭要素を使う
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d)
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d)
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(n))
	}
	return decimal.NullDecimal{}
}
