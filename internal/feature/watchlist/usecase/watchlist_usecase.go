// Package usecase implements the business logic for the watchlist of tracked symbols.
package usecase

import (
	"context"
	"errors"
	"strings"

	"pe_backend/internal/feature/watchlist/domain/entity"
)

var (
	// ErrSymbolNotFound is returned when untracking a code that is not on the watchlist.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrInvalidCode is returned for a blank code.
	ErrInvalidCode = errors.New("invalid symbol code")
)

// SymbolRepository abstracts the persistence layer for tracked symbols.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.TrackedSymbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	// Upsert activates code, creating it at the end of the list if it does not exist yet.
	Upsert(ctx context.Context, code, name string) (entity.TrackedSymbol, error)
	// Deactivate reports false when code is not an active symbol.
	Deactivate(ctx context.Context, code string) (bool, error)
}

// WatchlistUsecase provides business logic for watchlist operations.
type WatchlistUsecase struct {
	repo SymbolRepository
}

// NewWatchlistUsecase creates a new WatchlistUsecase with the given repository.
func NewWatchlistUsecase(r SymbolRepository) *WatchlistUsecase {
	return &WatchlistUsecase{repo: r}
}

// List returns the active symbols in display order.
func (u *WatchlistUsecase) List(ctx context.Context) ([]entity.TrackedSymbol, error) {
	return u.repo.ListActive(ctx)
}

// ActiveCodes returns the codes the scheduled ingest should refresh.
func (u *WatchlistUsecase) ActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// Track adds code to the watchlist, or reactivates it and updates its name.
func (u *WatchlistUsecase) Track(ctx context.Context, code, name string) (entity.TrackedSymbol, error) {
	code = normalizeCode(code)
	if code == "" {
		return entity.TrackedSymbol{}, ErrInvalidCode
	}
	return u.repo.Upsert(ctx, code, strings.TrimSpace(name))
}

// Untrack removes code from the active watchlist.
func (u *WatchlistUsecase) Untrack(ctx context.Context, code string) error {
	code = normalizeCode(code)
	if code == "" {
		return ErrInvalidCode
	}
	found, err := u.repo.Deactivate(ctx, code)
	if err != nil {
		return err
	}
	if !found {
		return ErrSymbolNotFound
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
