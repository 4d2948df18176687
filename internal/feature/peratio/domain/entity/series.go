// Package entity defines the domain models for the peratio feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single weekly close for a symbol.
type PricePoint struct {
	Date  time.Time       // Calendar day of the observation (midnight UTC once normalized)
	Close decimal.Decimal // Closing price
}

// EarningsRecord is a single earnings announcement.
// EPS.Valid is false when the provider reported no figure.
type EarningsRecord struct {
	Date time.Time           // Announcement date
	EPS  decimal.NullDecimal // Reported earnings per share
}

// AlignedPoint combines a price observation with the TTM P/E ratio known as of its date.
// PERatio.Valid is false when fewer than four earnings were known or the TTM sum was not positive.
type AlignedPoint struct {
	Date    time.Time
	Close   decimal.Decimal
	PERatio decimal.NullDecimal
}

// Series is the computed P/E series for one symbol, ordered by date ascending.
type Series struct {
	Symbol string
	Points []AlignedPoint
}

// Labels returns the point dates formatted as YYYY-MM-DD.
func (s Series) Labels() []string {
	out := make([]string, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, FormatDate(p.Date))
	}
	return out
}

// Prices returns the closes rounded to two decimal places.
func (s Series) Prices() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, p.Close.Round(2))
	}
	return out
}

// PERatios returns the ratios, index-aligned with Labels and Prices.
func (s Series) PERatios() []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, p.PERatio)
	}
	return out
}
