// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// TrackedSymbol is a ticker the service keeps ingested and offers to clients.
// Untracked symbols are kept with IsActive=false so their sort order survives re-tracking.
type TrackedSymbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null;default:''"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
