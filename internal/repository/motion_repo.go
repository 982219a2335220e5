package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MotionRepository 睡眠检测采样仓储（含采样期应用使用）
type MotionRepository struct {
	db *gorm.DB
}

// NewMotionRepository 创建采样仓储
func NewMotionRepository(db *gorm.DB) *MotionRepository {
	return &MotionRepository{db: db}
}

// Save 幂等写入一条采样及其应用使用明细
func (r *MotionRepository) Save(ctx context.Context, sample *schema.MotionSample, apps []schema.MotionAppUsage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
			Create(sample)
		if res.Error != nil {
			return res.Error
		}
		// 采样已存在时不重复写应用明细
		if res.RowsAffected == 0 || len(apps) == 0 {
			return nil
		}
		for i := range apps {
			apps[i].SampleID = sample.EventID
		}
		return tx.Create(&apps).Error
	})
	if err != nil {
		return fmt.Errorf("写入睡眠采样失败: %w", err)
	}
	return nil
}

// ListRange 按用户与时间范围查询采样，按时间升序
func (r *MotionRepository) ListRange(ctx context.Context, userUID string, start, end time.Time) ([]schema.MotionSample, error) {
	var samples []schema.MotionSample
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND timestamp >= ? AND timestamp <= ?", userUID, start, end).
		Order("timestamp ASC").
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("查询睡眠采样失败: %w", err)
	}
	return samples, nil
}

// AppTotal 单个应用在时间范围内的使用合计
type AppTotal struct {
	AppName     string  `json:"app_name"`
	TimeUsedSec float64 `json:"time_used_sec"`
}

// AppUsageRange 按用户与时间范围聚合采样期的应用使用
func (r *MotionRepository) AppUsageRange(ctx context.Context, userUID string, start, end time.Time) ([]AppTotal, error) {
	var totals []AppTotal
	err := r.db.WithContext(ctx).
		Model(&schema.MotionAppUsage{}).
		Select("motion_app_usages.app_name, SUM(motion_app_usages.time_used_sec) as time_used_sec").
		Joins("JOIN motion_samples ON motion_samples.event_id = motion_app_usages.sample_id").
		Where("motion_samples.user_uid = ? AND motion_samples.timestamp_prev >= ? AND motion_samples.timestamp <= ?", userUID, start, end).
		Group("motion_app_usages.app_name").
		Order("time_used_sec DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("聚合应用使用失败: %w", err)
	}
	return totals, nil
}
