package usecase

import "errors"

var (
	// ErrNoPriceData is returned when the price provider has no series for the symbol.
	// Handlers report it as "not found" rather than a generic failure.
	ErrNoPriceData = errors.New("no price data")

	// ErrProviderFailure wraps any failure of a price or earnings provider
	// (network, upstream error payload, unparsable data).
	ErrProviderFailure = errors.New("provider failure")

	// ErrInvalidYears is returned when the requested span exceeds MaxYears.
	ErrInvalidYears = errors.New("invalid years")

	// ErrInvalidSymbol is returned when the symbol is empty after normalization.
	ErrInvalidSymbol = errors.New("invalid symbol")
)
