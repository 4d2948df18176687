package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pe_backend/internal/feature/peratio/domain/entity"
	"pe_backend/internal/feature/peratio/usecase"
)

// EarningsModel は決算発表テーブルの行です。
// 同一日の発表が複数あり得るため、(symbol, date, seq)で一意にします。
type EarningsModel struct {
	ID     uint            `gorm:"primaryKey"`
	Symbol string          `gorm:"size:32;not null;uniqueIndex:earnings_sym_date_seq,priority:1"`
	Date   time.Time       `gorm:"not null;uniqueIndex:earnings_sym_date_seq,priority:2"`
	Seq    int             `gorm:"not null;default:0;uniqueIndex:earnings_sym_date_seq,priority:3"`
	EPS    decimal.Decimal `gorm:"column:eps;type:numeric(20,6);not null"`
}

func (EarningsModel) TableName() string {
	return "earnings_announcements"
}

// earningsGorm はEarningsStoreとEarningsProviderのgorm実装です。
type earningsGorm struct {
	db *gorm.DB
}

var (
	_ usecase.EarningsStore    = (*earningsGorm)(nil)
	_ usecase.EarningsProvider = (*earningsGorm)(nil)
)

// NewEarningsRepository は指定されたDB接続でearningsGormの新しいインスタンスを生成します。
func NewEarningsRepository(db *gorm.DB) *earningsGorm {
	return &earningsGorm{db: db}
}

// ReplaceAll は銘柄の決算履歴をトランザクション内で削除し、recordsで作り直します。
// EPSが不明なレコードは保存しません。
func (r *earningsGorm) ReplaceAll(ctx context.Context, symbol string, records []entity.EarningsRecord) error {
	ms := make([]EarningsModel, 0, len(records))
	for i, e := range records {
		if !e.EPS.Valid {
			continue
		}
		ms = append(ms, EarningsModel{
			Symbol: symbol,
			Date:   entity.NormalizeDate(e.Date),
			Seq:    i,
			EPS:    e.EPS.Decimal,
		})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symbol = ?", symbol).Delete(&EarningsModel{}).Error; err != nil {
			return err
		}
		if len(ms) == 0 {
			return nil
		}
		return tx.Create(&ms).Error
	})
}

// GetEarnings は銘柄の決算履歴を発表日の昇順（同日は保存順）で返します。
func (r *earningsGorm) GetEarnings(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
	var rows []EarningsModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date ASC").
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.EarningsRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.EarningsRecord{
			Date: entity.NormalizeDate(m.Date.UTC()),
			EPS:  decimal.NewNullDecimal(m.EPS),
		})
	}
	return out, nil
}
