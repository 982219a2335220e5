package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
)

// CallRepository 通话记录仓储
type CallRepository struct {
	db *gorm.DB
}

// NewCallRepository 创建通话仓储
func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

// Save 幂等写入通话记录
func (r *CallRepository) Save(ctx context.Context, c *schema.CallRecord) error {
	if err := idempotent(r.db.WithContext(ctx)).Create(c).Error; err != nil {
		return fmt.Errorf("写入通话记录失败: %w", err)
	}
	return nil
}

// ListRange 按用户与时间范围查询，按通话时间升序
func (r *CallRepository) ListRange(ctx context.Context, userUID string, start, end time.Time) ([]schema.CallRecord, error) {
	var calls []schema.CallRecord
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND call_date >= ? AND call_date <= ?", userUID, start, end).
		Order("call_date ASC").
		Find(&calls).Error
	if err != nil {
		return nil, fmt.Errorf("查询通话记录失败: %w", err)
	}
	return calls, nil
}
