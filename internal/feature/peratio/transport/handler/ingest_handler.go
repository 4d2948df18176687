package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pe_backend/internal/api"
	"pe_backend/internal/feature/peratio/usecase"
	infrahttp "pe_backend/internal/platform/http"
)

// IngestUsecase は1銘柄のデータを取り込むユースケースインターフェースです。
type IngestUsecase interface {
	IngestSymbol(ctx context.Context, symbol string) error
}

// IngestHandler は管理者向けの取り込みリクエストを処理します。
type IngestHandler struct {
	uc IngestUsecase
}

// NewIngestHandler は新しい IngestHandler を作成します。
func NewIngestHandler(uc IngestUsecase) *IngestHandler {
	return &IngestHandler{uc: uc}
}

// Ingest は指定銘柄の価格と決算を外部APIから取り込みます。
//
// POST /admin/ingest/:code
func (h *IngestHandler) Ingest(c *gin.Context) {
	symbol := usecase.NormalizeSymbol(c.Param("code"))
	if !infrahttp.IsTicker(symbol) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid symbol"})
		return
	}

	if err := h.uc.IngestSymbol(c.Request.Context(), symbol); err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoPriceData):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: fmt.Sprintf("No price data found for %s", symbol)})
		case errors.Is(err, usecase.ErrInvalidSymbol):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrProviderFailure):
			slog.Error("ingest failed upstream", "symbol", symbol, "error", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		default:
			slog.Error("ingest failed", "symbol", symbol, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "ingested " + symbol})
}
