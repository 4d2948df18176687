// Package dto はTwelve Data APIレスポンスのデータ転送オブジェクトを定義します。
package dto

import "github.com/shopspring/decimal"

// Envelope は全エンドポイント共通のステータス部分です。
// エラー時はHTTP 200でもstatusが"error"になります。
type Envelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// TimeSeriesResponse はtime_seriesエンドポイントからのJSONレスポンスを表します。
type TimeSeriesResponse struct {
	Envelope
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

// EarningsResponse はearningsエンドポイントからのJSONレスポンスを表します。
// 未発表の決算はeps_actualがnullになります。
type EarningsResponse struct {
	Envelope
	Earnings []struct {
		Date        string              `json:"date"`
		Time        string              `json:"time"`
		EPSEstimate decimal.NullDecimal `json:"eps_estimate"`
		EPSActual   decimal.NullDecimal `json:"eps_actual"`
	} `json:"earnings"`
}

// IncomeStatementResponse はincome_statementエンドポイントからのJSONレスポンスを表します。
// EPSの項目名が銘柄によって異なるため、各行は汎用マップのまま保持します。
type IncomeStatementResponse struct {
	Envelope
	IncomeStatement []map[string]any `json:"income_statement"`
}
