package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveTypingSessionResult 幂等写入键盘会话结果行（session_uid 冲突视为成功）
func (s *Store) SaveTypingSessionResult(ctx context.Context, row *schema.TypingSessionResult) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_uid"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("写入键盘会话结果失败: %w", err)
	}
	return nil
}

// SaveTypingMetricValues 幂等写入会话的指标值与 z 分数
func (s *Store) SaveTypingMetricValues(ctx context.Context, rows []schema.TypingMetricValue) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_uid"}, {Name: "metric_name"}},
			DoNothing: true,
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("写入键盘指标值失败: %w", err)
	}
	return nil
}

// SessionDecision 单会话的判定
type SessionDecision struct {
	SessionUID string
	Decision   string
}

// TypingDecisionsOfDay 某用户某天全部键盘会话的判定（每会话一条）
func (s *Store) TypingDecisionsOfDay(ctx context.Context, userUID, day string) ([]SessionDecision, error) {
	var rows []schema.TypingSessionResult
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND DATE(session_date) = ?", userUID, day).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询会话判定失败: %w", err)
	}

	out := make([]SessionDecision, 0, len(rows))
	for _, r := range rows {
		out = append(out, SessionDecision{SessionUID: r.SessionUID, Decision: r.CognitiveResult})
	}
	return out, nil
}

// TypingMetricValuesOfDay 某用户某天某指标的全部会话值（均值/标准差诊断用）
func (s *Store) TypingMetricValuesOfDay(ctx context.Context, userUID, metric, day string) ([]float64, error) {
	var rows []schema.TypingMetricValue
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND metric_name = ? AND DATE(session_date) = ?", userUID, metric, day).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询键盘指标值失败: %w", err)
	}

	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Value)
	}
	return values, nil
}

// SaveTypingDailyStats 写入某天的判定分布与总分；(user, day) 已存在时返回现有 ID
func (s *Store) SaveTypingDailyStats(ctx context.Context, row *schema.TypingDailyStats) (int64, error) {
	var existing schema.TypingDailyStats
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND day_analyzed = ?", row.UserUID, row.DayAnalyzed).
		First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("查询键盘日统计失败: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, fmt.Errorf("写入键盘日统计失败: %w", err)
	}
	return row.ID, nil
}
