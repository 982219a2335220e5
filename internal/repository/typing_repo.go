package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TypingRepository 键盘会话仓储
type TypingRepository struct {
	db *gorm.DB
}

// NewTypingRepository 创建键盘会话仓储
func NewTypingRepository(db *gorm.DB) *TypingRepository {
	return &TypingRepository{db: db}
}

// Save 幂等写入会话（session_uid 冲突视为成功）
func (r *TypingRepository) Save(ctx context.Context, s *schema.TypingSession) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_uid"}}, DoNothing: true}).
		Create(s).Error
	if err != nil {
		return fmt.Errorf("写入键盘会话失败: %w", err)
	}
	return nil
}

// Exists 会话是否已在缓存中
func (r *TypingRepository) Exists(ctx context.Context, sessionUID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.TypingSession{}).
		Where("session_uid = ?", sessionUID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询键盘会话失败: %w", err)
	}
	return count > 0, nil
}

// HasAny 用户是否有至少一个会话
func (r *TypingRepository) HasAny(ctx context.Context, userUID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.TypingSession{}).
		Where("user_uid = ?", userUID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询键盘会话失败: %w", err)
	}
	return count > 0, nil
}

// ListRange 按用户与创建时间范围查询
func (r *TypingRepository) ListRange(ctx context.Context, userUID string, start, end time.Time) ([]schema.TypingSession, error) {
	var sessions []schema.TypingSession
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND date_created >= ? AND date_created <= ?", userUID, start, end).
		Order("date_created ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("查询键盘会话失败: %w", err)
	}
	return sessions, nil
}
