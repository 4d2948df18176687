// Package adapters はperatioフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pe_backend/internal/feature/peratio/domain/entity"
	"pe_backend/internal/feature/peratio/usecase"
)

// PriceModel は週次終値テーブルの行です。
type PriceModel struct {
	ID     uint            `gorm:"primaryKey"`
	Symbol string          `gorm:"size:32;not null;uniqueIndex:weekly_price_sym_date,priority:1"`
	Date   time.Time       `gorm:"not null;uniqueIndex:weekly_price_sym_date,priority:2"`
	Close  decimal.Decimal `gorm:"type:numeric(20,6);not null"`
}

func (PriceModel) TableName() string {
	return "weekly_prices"
}

// priceGorm はPriceStoreとPriceProviderのgorm実装です。
type priceGorm struct {
	db *gorm.DB
}

var (
	_ usecase.PriceStore    = (*priceGorm)(nil)
	_ usecase.PriceProvider = (*priceGorm)(nil)
)

// NewPriceRepository は指定されたDB接続でpriceGormの新しいインスタンスを生成します。
func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// UpsertBatch は週次終値を一括で挿入し、既存の(symbol, date)は終値を更新します。
func (r *priceGorm) UpsertBatch(ctx context.Context, symbol string, prices []entity.PricePoint) error {
	if len(prices) == 0 {
		return nil
	}
	ms := make([]PriceModel, 0, len(prices))
	for _, p := range prices {
		ms = append(ms, PriceModel{
			Symbol: symbol,
			Date:   entity.NormalizeDate(p.Date),
			Close:  p.Close,
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"close"}),
	}).Create(&ms).Error
}

// GetWeeklyPrices はsince以降の週次終値を日付の昇順で返します。
func (r *priceGorm) GetWeeklyPrices(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
	var rows []PriceModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ? AND date >= ?", symbol, entity.NormalizeDate(since)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PricePoint, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.PricePoint{Date: entity.NormalizeDate(m.Date.UTC()), Close: m.Close})
	}
	return out, nil
}
