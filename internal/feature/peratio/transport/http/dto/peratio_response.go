// Package dto はperatioフィーチャーのHTTP APIのデータ転送オブジェクトを定義します。
package dto

import "pe_backend/internal/feature/peratio/domain/entity"

// PERatioResponse はP/Eレシオ系列のレスポンスDTOです。
// 3つの配列は同じ長さで、インデックスごとに対応します。
type PERatioResponse struct {
	Labels   []string   `json:"labels"`   // 日付（YYYY-MM-DD）
	Prices   []float64  `json:"prices"`   // 終値（小数点以下2桁）
	PERatios []*float64 `json:"peRatios"` // P/Eレシオ（算出できない場合はnull）
}

// NewPERatioResponse はドメインの系列をレスポンスDTOに変換します。
func NewPERatioResponse(s entity.Series) PERatioResponse {
	out := PERatioResponse{
		Labels:   s.Labels(),
		Prices:   make([]float64, 0, len(s.Points)),
		PERatios: make([]*float64, 0, len(s.Points)),
	}
	for _, p := range s.Prices() {
		out.Prices = append(out.Prices, p.InexactFloat64())
	}
	for _, r := range s.PERatios() {
		if !r.Valid {
			out.PERatios = append(out.PERatios, nil)
			continue
		}
		v := r.Decimal.InexactFloat64()
		out.PERatios = append(out.PERatios, &v)
	}
	return out
}
