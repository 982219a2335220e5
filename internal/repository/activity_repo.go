package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
)

// ActivityRepository 活动识别事件仓储
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动仓储
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Save 幂等写入活动事件
func (r *ActivityRepository) Save(ctx context.Context, e *schema.ActivityEvent) error {
	if err := idempotent(r.db.WithContext(ctx)).Create(e).Error; err != nil {
		return fmt.Errorf("写入活动事件失败: %w", err)
	}
	return nil
}

// ListRange 按用户与时间范围查询，按时间升序
func (r *ActivityRepository) ListRange(ctx context.Context, userUID string, start, end time.Time) ([]schema.ActivityEvent, error) {
	var events []schema.ActivityEvent
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND timestamp >= ? AND timestamp <= ?", userUID, start, end).
		Order("timestamp ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("查询活动事件失败: %w", err)
	}
	return events, nil
}
