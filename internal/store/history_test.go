package store

import (
	"context"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/baseline"
	"github.com/metronlab/metron/internal/schema"
)

func TestLatestBaselinePicksNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m1, d1 := 10.0, 1.0
	m2, d2 := 20.0, 2.0
	rows := []schema.BaselineMetric{
		{UserUID: "u1", MetricName: baseline.MetricSQS, Median: &m1, MAD: &d1,
			CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{UserUID: "u1", MetricName: baseline.MetricSQS, Median: &m2, MAD: &d2,
			CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	if err := s.AppendBaselines(ctx, rows); err != nil {
		t.Fatalf("AppendBaselines: %v", err)
	}

	latest, err := s.LatestBaseline(ctx, "u1", baseline.MetricSQS)
	if err != nil {
		t.Fatalf("LatestBaseline: %v", err)
	}
	if latest == nil || *latest.Median != 20 {
		t.Fatalf("latest=%+v", latest)
	}

	none, err := s.LatestBaseline(ctx, "u1", baseline.MetricSleepTime)
	if err != nil {
		t.Fatalf("LatestBaseline 无记录: %v", err)
	}
	if none != nil {
		t.Fatalf("无记录应返回 nil: %+v", none)
	}
}

func TestMetricValuesSleepDispatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mk := func(day string, dur float64, startHour int) schema.SleepAnalysis {
		d, _ := time.Parse("2006-01-02", day)
		return schema.SleepAnalysis{
			UserUID: "u1", DayAnalyzed: day, Type: "main_sleep",
			EstimatedStart: d.Add(time.Duration(startHour) * time.Hour),
			EstimatedEnd:   d.Add(time.Duration(startHour+8) * time.Hour),
			DurationMin:    dur, QualityScore: 0.8,
		}
	}
	if err := s.db.Create(&[]schema.SleepAnalysis{
		mk("2026-03-08", 480, 23),
		mk("2026-03-09", 450, 22),
		// 小睡不参与基线
		{UserUID: "u1", DayAnalyzed: "2026-03-09", Type: "nap_sleep", DurationMin: 40},
	}).Error; err != nil {
		t.Fatalf("写入睡眠行: %v", err)
	}

	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	points, err := s.MetricValues(ctx, "u1", baseline.MetricSleepTime, time.Time{}, end)
	if err != nil {
		t.Fatalf("MetricValues: %v", err)
	}
	if len(points) != 2 || points[0].Value != 480 || points[1].Value != 450 {
		t.Fatalf("points=%+v", points)
	}

	// 起始时刻换算为小数小时
	points, err = s.MetricValues(ctx, "u1", baseline.MetricSleepStartTime, time.Time{}, end)
	if err != nil {
		t.Fatalf("MetricValues start: %v", err)
	}
	if points[0].Value != 23 || points[1].Value != 22 {
		t.Fatalf("start points=%+v", points)
	}

	// 下界过滤
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	points, err = s.MetricValues(ctx, "u1", baseline.MetricSleepTime, start, end)
	if err != nil {
		t.Fatalf("MetricValues 窗口: %v", err)
	}
	if len(points) != 1 || points[0].Value != 450 {
		t.Fatalf("窗口过滤错误: %+v", points)
	}
}

func TestMetricValuesGPSSpatialFeatures(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	row := schema.GPSAnalysis{UserUID: "u1", DayAnalyzed: "2026-03-09", DistanceKm: 5}
	features := schema.GPSSpatialFeatures{HullAreaM2: 1e6, SDEAreaM2: 4e5, MaxDistTimestamp: 1767945600}
	if _, err := s.SaveGPSAnalysis(ctx, &row, nil, nil, &features); err != nil {
		t.Fatalf("SaveGPSAnalysis: %v", err)
	}
	// 无空间特征的一天：hull/sde/max_dist 指标跳过该天
	bare := schema.GPSAnalysis{UserUID: "u1", DayAnalyzed: "2026-03-10", DistanceKm: 3}
	if _, err := s.SaveGPSAnalysis(ctx, &bare, nil, nil, nil); err != nil {
		t.Fatalf("SaveGPSAnalysis bare: %v", err)
	}

	end := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	points, err := s.MetricValues(ctx, "u1", baseline.MetricHullArea, time.Time{}, end)
	if err != nil {
		t.Fatalf("MetricValues hull: %v", err)
	}
	if len(points) != 1 || points[0].Value != 1e6 {
		t.Fatalf("hull points=%+v", points)
	}

	points, err = s.MetricValues(ctx, "u1", baseline.MetricMaxDistTime, time.Time{}, end)
	if err != nil {
		t.Fatalf("MetricValues max_dist_time: %v", err)
	}
	if len(points) != 1 || points[0].Value != 1767945600 {
		t.Fatalf("max_dist points=%+v", points)
	}

	points, err = s.MetricValues(ctx, "u1", baseline.MetricDistanceKm, time.Time{}, end)
	if err != nil {
		t.Fatalf("MetricValues distance: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("distance points=%+v", points)
	}
}

func TestMetricValuesTypingPerSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rows := []schema.TypingMetricValue{
		{SessionUID: "t1", MetricName: baseline.MetricPressureIntensity, UserUID: "u1",
			SessionDate: day.Add(9 * time.Hour), Value: 0.4},
		{SessionUID: "t2", MetricName: baseline.MetricPressureIntensity, UserUID: "u1",
			SessionDate: day.Add(15 * time.Hour), Value: 0.6},
		{SessionUID: "t1", MetricName: baseline.MetricNetProductionRate, UserUID: "u1",
			SessionDate: day.Add(9 * time.Hour), Value: 2.5},
	}
	if err := s.SaveTypingMetricValues(ctx, rows); err != nil {
		t.Fatalf("SaveTypingMetricValues: %v", err)
	}

	points, err := s.MetricValues(ctx, "u1", baseline.MetricPressureIntensity, time.Time{}, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("MetricValues typing: %v", err)
	}
	if len(points) != 2 || points[0].Value != 0.4 || points[1].Value != 0.6 {
		t.Fatalf("typing points=%+v", points)
	}
}
