// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pe_backend/internal/api"
	"pe_backend/internal/feature/watchlist/domain/entity"
	"pe_backend/internal/feature/watchlist/transport/http/dto"
	"pe_backend/internal/feature/watchlist/usecase"
)

// WatchlistUsecase は監視銘柄に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type WatchlistUsecase interface {
	List(ctx context.Context) ([]entity.TrackedSymbol, error)
	Track(ctx context.Context, code, name string) (entity.TrackedSymbol, error)
	Untrack(ctx context.Context, code string) error
}

// SymbolHandler は監視銘柄に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc WatchlistUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc WatchlistUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は有効な銘柄の一覧を返します。
//
// GET /symbols
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.List(c.Request.Context())
	if err != nil {
		slog.Error("failed to list symbols", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, toItem(s))
	}
	c.JSON(http.StatusOK, out)
}

// Track は銘柄を監視対象に追加します。
//
// POST /admin/symbols {"code":"AAPL","name":"Apple Inc."}
func (h *SymbolHandler) Track(c *gin.Context) {
	var req dto.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	s, err := h.uc.Track(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("failed to track symbol", "symbol", req.Code, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toItem(s))
}

// Untrack は銘柄を監視対象から外します。
//
// DELETE /admin/symbols/:code
func (h *SymbolHandler) Untrack(c *gin.Context) {
	code := c.Param("code")
	if err := h.uc.Untrack(c.Request.Context(), code); err != nil {
		switch {
		case errors.Is(err, usecase.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			slog.Error("failed to untrack symbol", "symbol", code, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func toItem(s entity.TrackedSymbol) dto.SymbolItem {
	return dto.SymbolItem{Code: s.Code, Name: s.Name}
}
