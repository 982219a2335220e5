package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store 远端分析库：基线与分析结果的持久化端。
// 生产环境为 postgres；测试中注入内存 sqlite 的 *gorm.DB。
type Store struct {
	db *gorm.DB
}

// Open 按 DSN 连接 postgres 并迁移结果表
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接分析库失败: %w", err)
	}

	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}

	slog.Info("分析库连接成功")
	return s, nil
}

// New 基于已有连接创建 Store（测试用）
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate 迁移全部结果表
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&schema.User{},
		&schema.DailyAnalysis{},
		&schema.SleepAnalysis{},
		&schema.SleepZScores{},
		&schema.InteractionAnalysis{},
		&schema.CircadianScreenTime{},
		&schema.AppUsage{},
		&schema.InteractionZScores{},
		&schema.ActivityAnalysis{},
		&schema.ActivityDaySection{},
		&schema.ActivityZScores{},
		&schema.CallAnalysis{},
		&schema.CallZScores{},
		&schema.GPSAnalysis{},
		&schema.GPSKeyLocation{},
		&schema.GPSTransition{},
		&schema.GPSSpatialFeatures{},
		&schema.GPSZScores{},
		&schema.BaselineMetric{},
		&schema.TypingSessionResult{},
		&schema.TypingMetricValue{},
		&schema.TypingDailyStats{},
	)
	if err != nil {
		return fmt.Errorf("迁移分析库失败: %w", err)
	}
	return nil
}

// Close 关闭底层连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnsureUser 幂等写入用户
func (s *Store) EnsureUser(ctx context.Context, user *schema.User) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "uid"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("写入用户失败: %w", err)
	}
	return nil
}

// CreateDailyAnalysis 创建当天的顶层分析事件；已存在则返回现有 ID
func (s *Store) CreateDailyAnalysis(ctx context.Context, userUID, day string, analysisDate time.Time) (int64, error) {
	var existing schema.DailyAnalysis
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND day_analyzed = ?", userUID, day).
		First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询按天分析事件失败: %w", err)
	}

	row := schema.DailyAnalysis{UserUID: userUID, DayAnalyzed: day, AnalysisDate: analysisDate}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("创建按天分析事件失败: %w", err)
	}
	return row.ID, nil
}

// UpdateDecision 将综合评分与判定回写到类别主表
func (s *Store) UpdateDecision(ctx context.Context, category string, analysisID int64, score float64, decision string) error {
	var model any
	switch category {
	case schema.CategorySleep:
		model = &schema.SleepAnalysis{}
	case schema.CategoryInteraction:
		model = &schema.InteractionAnalysis{}
	case schema.CategoryActivity:
		model = &schema.ActivityAnalysis{}
	case schema.CategoryCalls:
		model = &schema.CallAnalysis{}
	case schema.CategoryGPS:
		model = &schema.GPSAnalysis{}
	default:
		return fmt.Errorf("未知的分析类别: %s", category)
	}

	res := s.db.WithContext(ctx).Model(model).
		Where("id = ?", analysisID).
		Updates(map[string]any{"cognitive_score": score, "cognitive_result": decision})
	if res.Error != nil {
		return fmt.Errorf("回写评分失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("回写评分未命中任何行: id=%d", analysisID)
	}
	return nil
}

// UpdateTypingSessionDecision 回写单个键盘会话的评分与判定
func (s *Store) UpdateTypingSessionDecision(ctx context.Context, sessionUID string, score float64, decision string) error {
	err := s.db.WithContext(ctx).Model(&schema.TypingSessionResult{}).
		Where("session_uid = ?", sessionUID).
		Updates(map[string]any{"cognitive_score": score, "cognitive_result": decision}).Error
	if err != nil {
		return fmt.Errorf("回写会话评分失败: %w", err)
	}
	return nil
}
