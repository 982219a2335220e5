package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/metronlab/metron/internal/baseline"
	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
)

// LatestBaseline 取某用户某指标最新的一条基线记录；无记录返回 nil
func (s *Store) LatestBaseline(ctx context.Context, userUID, metric string) (*schema.BaselineMetric, error) {
	var row schema.BaselineMetric
	err := s.db.WithContext(ctx).
		Where("user_uid = ? AND metric_name = ?", userUID, metric).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询基线失败: %w", err)
	}
	return &row, nil
}

// AppendBaselines 追加基线记录（从不覆盖旧记录）
func (s *Store) AppendBaselines(ctx context.Context, rows []schema.BaselineMetric) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("追加基线失败: %w", err)
	}
	return nil
}

// MetricValues 读取某指标的历史样本，供基线协议计算均值/中位数/MAD。
// 行为类指标按天一个样本（取自各类别分析表），键盘指标按会话一个样本。
// start 为零值表示不设下界。
func (s *Store) MetricValues(ctx context.Context, userUID, metric string, start, end time.Time) ([]baseline.Point, error) {
	switch metric {
	case baseline.MetricSleepTime, baseline.MetricSQS,
		baseline.MetricSleepStartTime, baseline.MetricSleepEndTime:
		return s.sleepValues(ctx, userUID, metric, start, end)

	case baseline.MetricScreenTime, baseline.MetricLowLightTime, baseline.MetricDropEvents:
		return s.interactionValues(ctx, userUID, metric, start, end)

	case baseline.MetricActiveMinutes:
		return s.activityValues(ctx, userUID, start, end)

	case baseline.MetricMissedRatio, baseline.MetricAvgCallDur, baseline.MetricTotalCalls:
		return s.callValues(ctx, userUID, metric, start, end)

	case baseline.MetricTimeInHome, baseline.MetricTimeTraveling, baseline.MetricTimeOutOfHome,
		baseline.MetricDistanceKm, baseline.MetricAvgLocationHours, baseline.MetricUniqueLocations,
		baseline.MetricHullArea, baseline.MetricSDEArea, baseline.MetricMaxDistTime, baseline.MetricEntropy:
		return s.gpsValues(ctx, userUID, metric, start, end)

	default:
		return s.typingValues(ctx, userUID, metric, start, end)
	}
}

func dayWindow(q *gorm.DB, start, end time.Time) *gorm.DB {
	if !start.IsZero() {
		q = q.Where("day_analyzed >= ?", start.Format("2006-01-02"))
	}
	return q.Where("day_analyzed <= ?", end.Format("2006-01-02"))
}

func dayTime(day string) time.Time {
	t, _ := time.Parse("2006-01-02", day)
	return t
}

// hourOfDay 当天内的小数小时（0-24）
func hourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func (s *Store) sleepValues(ctx context.Context, userUID, metric string, start, end time.Time) ([]baseline.Point, error) {
	var rows []schema.SleepAnalysis
	q := s.db.WithContext(ctx).
		Where("user_uid = ? AND type = ?", userUID, "main_sleep").
		Order("day_analyzed ASC")
	if err := dayWindow(q, start, end).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询睡眠历史失败: %w", err)
	}

	points := make([]baseline.Point, 0, len(rows))
	for _, row := range rows {
		var v float64
		switch metric {
		case baseline.MetricSleepTime:
			v = row.DurationMin
		case baseline.MetricSQS:
			v = row.QualityScore
		case baseline.MetricSleepStartTime:
			v = hourOfDay(row.EstimatedStart)
		case baseline.MetricSleepEndTime:
			v = hourOfDay(row.EstimatedEnd)
		}
		points = append(points, baseline.Point{Time: dayTime(row.DayAnalyzed), Value: v})
	}
	return points, nil
}

func (s *Store) interactionValues(ctx context.Context, userUID, metric string, start, end time.Time) ([]baseline.Point, error) {
	var rows []schema.InteractionAnalysis
	q := s.db.WithContext(ctx).Where("user_uid = ?", userUID).Order("day_analyzed ASC")
	if err := dayWindow(q, start, end).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询设备交互历史失败: %w", err)
	}

	points := make([]baseline.Point, 0, len(rows))
	for _, row := range rows {
		var v float64
		switch metric {
		case baseline.MetricScreenTime:
			v = row.ScreenTimeSec
		case baseline.MetricLowLightTime:
			v = row.LowLightSec
		case baseline.MetricDropEvents:
			v = float64(row.DropEvents)
		}
		points = append(points, baseline.Point{Time: dayTime(row.DayAnalyzed), Value: v})
	}
	return points, nil
}

func (s *Store) activityValues(ctx context.Context, userUID string, start, end time.Time) ([]baseline.Point, error) {
	var rows []schema.ActivityAnalysis
	q := s.db.WithContext(ctx).Where("user_uid = ?", userUID).Order("day_analyzed ASC")
	if err := dayWindow(q, start, end).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询活动历史失败: %w", err)
	}

	points := make([]baseline.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, baseline.Point{
			Time:  dayTime(row.DayAnalyzed),
			Value: float64(row.DailyActiveMinutes),
		})
	}
	return points, nil
}

func (s *Store) callValues(ctx context.Context, userUID, metric string, start, end time.Time) ([]baseline.Point, error) {
	var rows []schema.CallAnalysis
	q := s.db.WithContext(ctx).Where("user_uid = ?", userUID).Order("day_analyzed ASC")
	if err := dayWindow(q, start, end).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询通话历史失败: %w", err)
	}

	points := make([]baseline.Point, 0, len(rows))
	for _, row := range rows {
		var v float64
		switch metric {
		case baseline.MetricMissedRatio:
			v = row.MissedRatio
		case baseline.MetricAvgCallDur:
			v = row.AvgDurationSec
		case baseline.MetricTotalCalls:
			v = float64(row.TotalCalls)
		}
		points = append(points, baseline.Point{Time: dayTime(row.DayAnalyzed), Value: v})
	}
	return points, nil
}

func (s *Store) gpsValues(ctx context.Context, userUID, metric string, start, end time.Time) ([]baseline.Point, error) {
	var rows []schema.GPSAnalysis
	q := s.db.WithContext(ctx).Where("user_uid = ?", userUID).Order("day_analyzed ASC")
	if err := dayWindow(q, start, end).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询移动性历史失败: %w", err)
	}

	points := make([]baseline.Point, 0, len(rows))
	for _, row := range rows {
		var v float64
		switch metric {
		case baseline.MetricTimeInHome:
			v = row.TimeInHomeSec
		case baseline.MetricTimeTraveling:
			v = row.TimeTravelingSec
		case baseline.MetricTimeOutOfHome:
			v = row.TimeOutOfHomeSec
		case baseline.MetricDistanceKm:
			v = row.DistanceKm
		case baseline.MetricAvgLocationHours:
			v = row.AvgLocationHours
		case baseline.MetricUniqueLocations:
			v = float64(row.UniqueLocations)
		case baseline.MetricEntropy:
			v = row.Entropy
		case baseline.MetricHullArea, baseline.MetricSDEArea, baseline.MetricMaxDistTime:
			f, err := s.SpatialFeatures(ctx, row.ID)
			if err != nil {
				return nil, err
			}
			if f == nil {
				continue
			}
			switch metric {
			case baseline.MetricHullArea:
				v = f.HullAreaM2
			case baseline.MetricSDEArea:
				v = f.SDEAreaM2
			case baseline.MetricMaxDistTime:
				v = float64(f.MaxDistTimestamp)
			}
		}
		points = append(points, baseline.Point{Time: dayTime(row.DayAnalyzed), Value: v})
	}
	return points, nil
}

func (s *Store) typingValues(ctx context.Context, userUID, metric string, start, end time.Time) ([]baseline.Point, error) {
	var rows []schema.TypingMetricValue
	q := s.db.WithContext(ctx).
		Where("user_uid = ? AND metric_name = ?", userUID, metric).
		Order("session_date ASC")
	if !start.IsZero() {
		q = q.Where("session_date >= ?", start)
	}
	q = q.Where("session_date <= ?", end)
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询键盘指标历史失败: %w", err)
	}

	points := make([]baseline.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, baseline.Point{Time: row.SessionDate, Value: row.Value})
	}
	return points, nil
}
