package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
)

// SaveSleepAnalyses 写入当天的睡眠窗口。
// 与已存在窗口时间上重叠的记录跳过（重复提交视为成功），返回实际写入的行。
func (s *Store) SaveSleepAnalyses(ctx context.Context, rows []schema.SleepAnalysis) ([]schema.SleepAnalysis, error) {
	saved := make([]schema.SleepAnalysis, 0, len(rows))
	for i := range rows {
		row := rows[i]

		var count int64
		err := s.db.WithContext(ctx).Model(&schema.SleepAnalysis{}).
			Where("user_uid = ? AND estimated_start <= ? AND estimated_end >= ?",
				row.UserUID, row.EstimatedEnd, row.EstimatedStart).
			Count(&count).Error
		if err != nil {
			return saved, fmt.Errorf("查询睡眠窗口失败: %w", err)
		}
		if count > 0 {
			slog.Info("睡眠窗口与已有记录重叠，跳过",
				"user", row.UserUID, "start", row.EstimatedStart, "end", row.EstimatedEnd)
			continue
		}

		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return saved, fmt.Errorf("写入睡眠窗口失败: %w", err)
		}
		saved = append(saved, row)
	}
	return saved, nil
}

// MainSleepAnalysis 取某用户某天的主睡眠分析行
func (s *Store) MainSleepAnalysis(ctx context.Context, userUID, day string) (*schema.SleepAnalysis, error) {
	var row schema.SleepAnalysis
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND day_analyzed = ? AND type = ?", userUID, day, "main_sleep").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询主睡眠失败: %w", err)
	}
	return &row, nil
}

// SaveInteractionAnalysis 写入设备交互分析及其昼夜分桶与应用使用明细。
// (user, day) 已存在时返回现有 ID，不重复写明细。
func (s *Store) SaveInteractionAnalysis(ctx context.Context, row *schema.InteractionAnalysis,
	circadian []schema.CircadianScreenTime, apps []schema.AppUsage) (int64, error) {

	var existing schema.InteractionAnalysis
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND day_analyzed = ?", row.UserUID, row.DayAnalyzed).
		First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询设备交互分析失败: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for i := range circadian {
			circadian[i].AnalysisID = row.ID
		}
		if len(circadian) > 0 {
			if err := tx.Create(&circadian).Error; err != nil {
				return err
			}
		}
		for i := range apps {
			apps[i].AnalysisID = row.ID
		}
		if len(apps) > 0 {
			if err := tx.Create(&apps).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("写入设备交互分析失败: %w", err)
	}
	return row.ID, nil
}

// SaveActivityAnalysis 写入活动分析及日段分布；(user, day) 已存在时返回现有 ID
func (s *Store) SaveActivityAnalysis(ctx context.Context, row *schema.ActivityAnalysis,
	sections []schema.ActivityDaySection) (int64, error) {

	var existing schema.ActivityAnalysis
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND day_analyzed = ?", row.UserUID, row.DayAnalyzed).
		First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询活动分析失败: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for i := range sections {
			sections[i].AnalysisID = row.ID
		}
		if len(sections) > 0 {
			if err := tx.Create(&sections).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("写入活动分析失败: %w", err)
	}
	return row.ID, nil
}

// SaveCallAnalysis 写入通话分析；(user, day) 已存在时返回现有 ID
func (s *Store) SaveCallAnalysis(ctx context.Context, row *schema.CallAnalysis) (int64, error) {
	var existing schema.CallAnalysis
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND day_analyzed = ?", row.UserUID, row.DayAnalyzed).
		First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询通话分析失败: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, fmt.Errorf("写入通话分析失败: %w", err)
	}
	return row.ID, nil
}

// SaveGPSAnalysis 写入移动性分析及关键位置、移动、空间特征明细。
// (user, day) 已存在时返回现有 ID，不重复写明细。
func (s *Store) SaveGPSAnalysis(ctx context.Context, row *schema.GPSAnalysis,
	keyLocs []schema.GPSKeyLocation, transitions []schema.GPSTransition,
	features *schema.GPSSpatialFeatures) (int64, error) {

	var existing schema.GPSAnalysis
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND day_analyzed = ?", row.UserUID, row.DayAnalyzed).
		First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询移动性分析失败: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for i := range keyLocs {
			keyLocs[i].AnalysisID = row.ID
		}
		if len(keyLocs) > 0 {
			if err := tx.Create(&keyLocs).Error; err != nil {
				return err
			}
		}
		for i := range transitions {
			transitions[i].AnalysisID = row.ID
		}
		if len(transitions) > 0 {
			if err := tx.Create(&transitions).Error; err != nil {
				return err
			}
		}
		if features != nil {
			features.AnalysisID = row.ID
			if err := tx.Create(features).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("写入移动性分析失败: %w", err)
	}
	return row.ID, nil
}

// SpatialFeatures 取某次移动性分析的空间特征
func (s *Store) SpatialFeatures(ctx context.Context, analysisID int64) (*schema.GPSSpatialFeatures, error) {
	var f schema.GPSSpatialFeatures
	err := s.db.WithContext(ctx).Where("analysis_id = ?", analysisID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询空间特征失败: %w", err)
	}
	return &f, nil
}

// CreateSleepZScores 写入睡眠 z 分数
func (s *Store) CreateSleepZScores(ctx context.Context, z *schema.SleepZScores) error {
	if err := s.db.WithContext(ctx).Create(z).Error; err != nil {
		return fmt.Errorf("写入睡眠 z 分数失败: %w", err)
	}
	return nil
}

// CreateInteractionZScores 写入设备交互 z 分数
func (s *Store) CreateInteractionZScores(ctx context.Context, z *schema.InteractionZScores) error {
	if err := s.db.WithContext(ctx).Create(z).Error; err != nil {
		return fmt.Errorf("写入设备交互 z 分数失败: %w", err)
	}
	return nil
}

// CreateActivityZScores 写入活动 z 分数
func (s *Store) CreateActivityZScores(ctx context.Context, z *schema.ActivityZScores) error {
	if err := s.db.WithContext(ctx).Create(z).Error; err != nil {
		return fmt.Errorf("写入活动 z 分数失败: %w", err)
	}
	return nil
}

// CreateCallZScores 写入通话 z 分数
func (s *Store) CreateCallZScores(ctx context.Context, z *schema.CallZScores) error {
	if err := s.db.WithContext(ctx).Create(z).Error; err != nil {
		return fmt.Errorf("写入通话 z 分数失败: %w", err)
	}
	return nil
}

// CreateGPSZScores 写入移动性 z 分数
func (s *Store) CreateGPSZScores(ctx context.Context, z *schema.GPSZScores) error {
	if err := s.db.WithContext(ctx).Create(z).Error; err != nil {
		return fmt.Errorf("写入移动性 z 分数失败: %w", err)
	}
	return nil
}
