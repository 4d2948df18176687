// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pe_backend/internal/feature/watchlist/domain/entity"
	"pe_backend/internal/feature/watchlist/usecase"
)

// symbolGorm はSymbolRepositoryインターフェースのgorm実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.TrackedSymbol, error) {
	var symbols []entity.TrackedSymbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("id ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.TrackedSymbol{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("id ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Upsert は銘柄を有効化します。未登録の場合は末尾（最大sort_key+1）に追加します。
// nameが空の場合、既存の名前は変更しません。
func (r *symbolGorm) Upsert(ctx context.Context, code, name string) (entity.TrackedSymbol, error) {
	var out entity.TrackedSymbol
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.TrackedSymbol
		err := tx.Where("code = ?", code).First(&existing).Error
		switch {
		case err == nil:
			updates := map[string]any{"is_active": true}
			if name != "" {
				updates["name"] = name
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			return tx.First(&out, existing.ID).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			var maxKey int
			if err := tx.Model(&entity.TrackedSymbol{}).
				Select("COALESCE(MAX(sort_key), 0)").
				Scan(&maxKey).Error; err != nil {
				return err
			}
			out = entity.TrackedSymbol{Code: code, Name: name, IsActive: true, SortKey: maxKey + 1}
			return tx.Create(&out).Error
		default:
			return err
		}
	})
	return out, err
}

// Deactivate は銘柄を無効化します。有効な銘柄が存在しない場合はfalseを返します。
func (r *symbolGorm) Deactivate(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.TrackedSymbol{}).
		Where("code = ? AND is_active = ?", code, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
