// Package handler はperatioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"pe_backend/internal/api"
	"pe_backend/internal/feature/peratio/domain/entity"
	"pe_backend/internal/feature/peratio/transport/http/dto"
	"pe_backend/internal/feature/peratio/usecase"
	infrahttp "pe_backend/internal/platform/http"
)

// DefaultSymbol はsymbolが指定されなかった場合の銘柄です。
const DefaultSymbol = "AAPL"

// PERatioUsecase はP/Eレシオ系列を取得するユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PERatioUsecase interface {
	GetSeries(ctx context.Context, symbol string, years int) (entity.Series, error)
}

// PERatioHandler はP/Eレシオ系列のHTTPリクエストを処理します。
type PERatioHandler struct {
	uc PERatioUsecase
}

// NewPERatioHandler は指定されたusecaseでPERatioHandlerの新しいインスタンスを生成します。
func NewPERatioHandler(uc PERatioUsecase) *PERatioHandler {
	return &PERatioHandler{uc: uc}
}

// GetStock は銘柄のTTM P/Eレシオ系列をJSONで返します。
//
// エンドポイント例:
// GET /api/stock?symbol=AAPL&years=3
func (h *PERatioHandler) GetStock(c *gin.Context) {
	// ";"を含むなど解析できないクエリは400にする
	query, err := url.ParseQuery(c.Request.URL.RawQuery)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query"})
		return
	}

	// symbolキーが無い場合のみデフォルト銘柄を使う
	symbol := DefaultSymbol
	if vs, ok := query["symbol"]; ok {
		symbol = usecase.NormalizeSymbol(vs[0])
		if !infrahttp.IsTicker(symbol) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid symbol"})
			return
		}
	}

	// years は省略可能。省略時はusecase側でデフォルト値を使う
	var years *int
	if err := runtime.BindQueryParameter("form", true, false, "years", query, &years); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid years parameter"})
		return
	}
	y := 0
	if years != nil {
		if *years < 1 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "years must be at least 1"})
			return
		}
		y = *years
	}

	series, err := h.uc.GetSeries(c.Request.Context(), symbol, y)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoPriceData):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: fmt.Sprintf("No price data found for %s", symbol)})
		case errors.Is(err, usecase.ErrInvalidYears), errors.Is(err, usecase.ErrInvalidSymbol):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			slog.Error("failed to compute pe series", "symbol", symbol, "years", y, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewPERatioResponse(series))
}
