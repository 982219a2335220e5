package store

import (
	"context"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

func TestTypingSessionResultLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	row := schema.TypingSessionResult{SessionUID: "t1", UserUID: "u1", SessionDate: at}
	if err := s.SaveTypingSessionResult(ctx, &row); err != nil {
		t.Fatalf("SaveTypingSessionResult: %v", err)
	}
	// session_uid 冲突视为成功
	dup := schema.TypingSessionResult{SessionUID: "t1", UserUID: "u1", SessionDate: at}
	if err := s.SaveTypingSessionResult(ctx, &dup); err != nil {
		t.Fatalf("重复 SaveTypingSessionResult: %v", err)
	}

	if err := s.UpdateTypingSessionDecision(ctx, "t1", 0.3, "Normal"); err != nil {
		t.Fatalf("UpdateTypingSessionDecision: %v", err)
	}

	decisions, err := s.TypingDecisionsOfDay(ctx, "u1", "2026-03-10")
	if err != nil {
		t.Fatalf("TypingDecisionsOfDay: %v", err)
	}
	if len(decisions) != 1 || decisions[0].SessionUID != "t1" || decisions[0].Decision != "Normal" {
		t.Fatalf("decisions=%+v", decisions)
	}

	// 其他天为空
	decisions, err = s.TypingDecisionsOfDay(ctx, "u1", "2026-03-11")
	if err != nil {
		t.Fatalf("TypingDecisionsOfDay 次日: %v", err)
	}
	if len(decisions) != 0 {
		t.Fatalf("次日不应有判定: %+v", decisions)
	}
}

func TestSaveTypingMetricValuesIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	rows := []schema.TypingMetricValue{
		{SessionUID: "t1", MetricName: "pressure_intensity", UserUID: "u1", SessionDate: at, Value: 0.5, ZScore: 0.1},
		{SessionUID: "t1", MetricName: "net_production_rate", UserUID: "u1", SessionDate: at, Value: 3, ZScore: -0.2},
	}
	if err := s.SaveTypingMetricValues(ctx, rows); err != nil {
		t.Fatalf("SaveTypingMetricValues: %v", err)
	}
	if err := s.SaveTypingMetricValues(ctx, rows); err != nil {
		t.Fatalf("重复 SaveTypingMetricValues: %v", err)
	}

	values, err := s.TypingMetricValuesOfDay(ctx, "u1", "pressure_intensity", "2026-03-10")
	if err != nil {
		t.Fatalf("TypingMetricValuesOfDay: %v", err)
	}
	if len(values) != 1 || values[0] != 0.5 {
		t.Fatalf("values=%+v", values)
	}
}

func TestSaveTypingDailyStatsDedupe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	row := schema.TypingDailyStats{
		UserUID: "u1", DayAnalyzed: "2026-03-10",
		PctNormal: 100, TotalScore: 0, SessionsCount: 4,
	}
	id1, err := s.SaveTypingDailyStats(ctx, &row)
	if err != nil {
		t.Fatalf("SaveTypingDailyStats: %v", err)
	}

	dup := schema.TypingDailyStats{UserUID: "u1", DayAnalyzed: "2026-03-10", PctExcellent: 100}
	id2, err := s.SaveTypingDailyStats(ctx, &dup)
	if err != nil {
		t.Fatalf("SaveTypingDailyStats 二次: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("ID 不一致: %d != %d", id1, id2)
	}

	var count int64
	if err := s.db.Model(&schema.TypingDailyStats{}).Count(&count).Error; err != nil {
		t.Fatalf("统计日统计: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows=%d, 期望 1", count)
	}
}
