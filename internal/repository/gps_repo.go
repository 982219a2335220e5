package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GPSRepository GPS 定位事件仓储
type GPSRepository struct {
	db *gorm.DB
}

// NewGPSRepository 创建 GPS 仓储
func NewGPSRepository(db *gorm.DB) *GPSRepository {
	return &GPSRepository{db: db}
}

// Save 幂等写入单条定位（event_id 冲突视为成功）
func (r *GPSRepository) Save(ctx context.Context, fix *schema.GPSFix) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(fix).Error
	if err != nil {
		return fmt.Errorf("写入 GPS 事件失败: %w", err)
	}
	return nil
}

// BatchSave 批量幂等写入（事务包裹）
func (r *GPSRepository) BatchSave(ctx context.Context, fixes []schema.GPSFix) error {
	if len(fixes) == 0 {
		return nil
	}

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
			CreateInBatches(fixes, 200).Error
	})
	if err != nil {
		slog.Error("批量写入 GPS 事件失败", "count", len(fixes), "error", err)
		return fmt.Errorf("批量写入 GPS 事件失败: %w", err)
	}

	slog.Debug("批量写入 GPS 事件成功", "count", len(fixes), "duration", time.Since(start))
	return nil
}

// ListRange 按用户与时间范围查询，按时间升序
func (r *GPSRepository) ListRange(ctx context.Context, userUID string, start, end time.Time) ([]schema.GPSFix, error) {
	var fixes []schema.GPSFix
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND timestamp >= ? AND timestamp <= ?", userUID, start, end).
		Order("timestamp ASC").
		Find(&fixes).Error
	if err != nil {
		return nil, fmt.Errorf("查询 GPS 事件失败: %w", err)
	}
	return fixes, nil
}
