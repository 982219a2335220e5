package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InteractionRepository 设备交互类事件仓储：屏幕会话、解锁、跌落、低光照
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository 创建设备交互仓储
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func idempotent(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true})
}

// SaveScreenSession 幂等写入屏幕会话
func (r *InteractionRepository) SaveScreenSession(ctx context.Context, s *schema.ScreenSession) error {
	if err := idempotent(r.db.WithContext(ctx)).Create(s).Error; err != nil {
		return fmt.Errorf("写入屏幕会话失败: %w", err)
	}
	return nil
}

// SaveUnlock 幂等写入解锁事件
func (r *InteractionRepository) SaveUnlock(ctx context.Context, u *schema.UnlockEvent) error {
	if err := idempotent(r.db.WithContext(ctx)).Create(u).Error; err != nil {
		return fmt.Errorf("写入解锁事件失败: %w", err)
	}
	return nil
}

// SaveDrop 幂等写入跌落事件
func (r *InteractionRepository) SaveDrop(ctx context.Context, d *schema.DropEvent) error {
	if err := idempotent(r.db.WithContext(ctx)).Create(d).Error; err != nil {
		return fmt.Errorf("写入跌落事件失败: %w", err)
	}
	return nil
}

// SaveLowLight 幂等写入低光照区间
func (r *InteractionRepository) SaveLowLight(ctx context.Context, l *schema.LowLightInterval) error {
	if err := idempotent(r.db.WithContext(ctx)).Create(l).Error; err != nil {
		return fmt.Errorf("写入低光照区间失败: %w", err)
	}
	return nil
}

// ListScreenSessions 按用户与时间范围查询屏幕会话
func (r *InteractionRepository) ListScreenSessions(ctx context.Context, userUID string, start, end time.Time) ([]schema.ScreenSession, error) {
	var sessions []schema.ScreenSession
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND start_time >= ? AND end_time <= ?", userUID, start, end).
		Order("start_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("查询屏幕会话失败: %w", err)
	}
	return sessions, nil
}

// ListUnlocks 按用户与时间范围查询解锁事件
func (r *InteractionRepository) ListUnlocks(ctx context.Context, userUID string, start, end time.Time) ([]schema.UnlockEvent, error) {
	var unlocks []schema.UnlockEvent
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND timestamp >= ? AND timestamp <= ?", userUID, start, end).
		Order("timestamp ASC").
		Find(&unlocks).Error
	if err != nil {
		return nil, fmt.Errorf("查询解锁事件失败: %w", err)
	}
	return unlocks, nil
}

// ListDrops 按用户与时间范围查询跌落事件
func (r *InteractionRepository) ListDrops(ctx context.Context, userUID string, start, end time.Time) ([]schema.DropEvent, error) {
	var drops []schema.DropEvent
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND timestamp >= ? AND timestamp <= ?", userUID, start, end).
		Order("timestamp ASC").
		Find(&drops).Error
	if err != nil {
		return nil, fmt.Errorf("查询跌落事件失败: %w", err)
	}
	return drops, nil
}

// ListLowLight 按用户与时间范围查询低光照区间
func (r *InteractionRepository) ListLowLight(ctx context.Context, userUID string, start, end time.Time) ([]schema.LowLightInterval, error) {
	var intervals []schema.LowLightInterval
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND start_time >= ? AND end_time <= ?", userUID, start, end).
		Order("start_time ASC").
		Find(&intervals).Error
	if err != nil {
		return nil, fmt.Errorf("查询低光照区间失败: %w", err)
	}
	return intervals, nil
}
