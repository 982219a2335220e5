package store

import (
	"context"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"github.com/metronlab/metron/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.OpenStoreDB(t))
}

func TestCreateDailyAnalysisIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC)

	id1, err := s.CreateDailyAnalysis(ctx, "u1", "2026-03-10", now)
	if err != nil {
		t.Fatalf("CreateDailyAnalysis: %v", err)
	}
	id2, err := s.CreateDailyAnalysis(ctx, "u1", "2026-03-10", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateDailyAnalysis 二次: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("同一 (user, day) 返回不同 ID: %d != %d", id1, id2)
	}

	id3, err := s.CreateDailyAnalysis(ctx, "u1", "2026-03-11", now)
	if err != nil {
		t.Fatalf("CreateDailyAnalysis 次日: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("不同天复用了同一事件")
	}
}

func TestEnsureUserIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.EnsureUser(ctx, &schema.User{UID: "u1", AppOrigin: "LogMyself"}); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if err := s.EnsureUser(ctx, &schema.User{UID: "u1", AppOrigin: "LogBoard"}); err != nil {
		t.Fatalf("EnsureUser 二次: %v", err)
	}

	var count int64
	if err := s.db.Model(&schema.User{}).Count(&count).Error; err != nil {
		t.Fatalf("统计用户: %v", err)
	}
	if count != 1 {
		t.Fatalf("users=%d, 期望 1", count)
	}
}

func TestSaveSleepAnalysesSkipsOverlap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	first := []schema.SleepAnalysis{{
		UserUID: "u1", DayAnalyzed: "2026-03-10", Type: "main_sleep",
		EstimatedStart: start, EstimatedEnd: end, DurationMin: 480,
	}}
	saved, err := s.SaveSleepAnalyses(ctx, first)
	if err != nil {
		t.Fatalf("SaveSleepAnalyses: %v", err)
	}
	if len(saved) != 1 || saved[0].ID == 0 {
		t.Fatalf("saved=%+v", saved)
	}

	// 与已有窗口重叠：跳过；不重叠的小睡：写入
	second := []schema.SleepAnalysis{
		{UserUID: "u1", DayAnalyzed: "2026-03-10", Type: "main_sleep",
			EstimatedStart: start.Add(time.Hour), EstimatedEnd: end.Add(time.Hour), DurationMin: 480},
		{UserUID: "u1", DayAnalyzed: "2026-03-10", Type: "nap_sleep",
			EstimatedStart: end.Add(6 * time.Hour), EstimatedEnd: end.Add(7 * time.Hour), DurationMin: 60},
	}
	saved, err = s.SaveSleepAnalyses(ctx, second)
	if err != nil {
		t.Fatalf("SaveSleepAnalyses 二次: %v", err)
	}
	if len(saved) != 1 || saved[0].Type != "nap_sleep" {
		t.Fatalf("重叠窗口未跳过: %+v", saved)
	}

	main, err := s.MainSleepAnalysis(ctx, "u1", "2026-03-10")
	if err != nil {
		t.Fatalf("MainSleepAnalysis: %v", err)
	}
	if main == nil || main.DurationMin != 480 {
		t.Fatalf("main=%+v", main)
	}
}

func TestSaveInteractionAnalysisWithDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	row := schema.InteractionAnalysis{UserUID: "u1", DayAnalyzed: "2026-03-10", ScreenTimeSec: 3600}
	circadian := []schema.CircadianScreenTime{
		{DaySection: "morning", DurationSec: 1800, Percentage: 50},
		{DaySection: "evening", DurationSec: 1800, Percentage: 50},
	}
	apps := []schema.AppUsage{{AppName: "chat", TimeUsedSec: 600}}

	id1, err := s.SaveInteractionAnalysis(ctx, &row, circadian, apps)
	if err != nil {
		t.Fatalf("SaveInteractionAnalysis: %v", err)
	}

	// 重复提交返回现有 ID，明细不翻倍
	dup := schema.InteractionAnalysis{UserUID: "u1", DayAnalyzed: "2026-03-10", ScreenTimeSec: 9999}
	id2, err := s.SaveInteractionAnalysis(ctx, &dup, circadian, apps)
	if err != nil {
		t.Fatalf("SaveInteractionAnalysis 二次: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("ID 不一致: %d != %d", id1, id2)
	}

	var count int64
	if err := s.db.Model(&schema.CircadianScreenTime{}).Where("analysis_id = ?", id1).Count(&count).Error; err != nil {
		t.Fatalf("统计昼夜分桶: %v", err)
	}
	if count != 2 {
		t.Fatalf("昼夜分桶=%d, 期望 2", count)
	}
}

func TestUpdateDecision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveCallAnalysis(ctx, &schema.CallAnalysis{UserUID: "u1", DayAnalyzed: "2026-03-10", TotalCalls: 3})
	if err != nil {
		t.Fatalf("SaveCallAnalysis: %v", err)
	}

	if err := s.UpdateDecision(ctx, schema.CategoryCalls, id, 0.7, "Very Good"); err != nil {
		t.Fatalf("UpdateDecision: %v", err)
	}

	var row schema.CallAnalysis
	if err := s.db.First(&row, id).Error; err != nil {
		t.Fatalf("读取通话分析: %v", err)
	}
	if row.CognitiveScore == nil || *row.CognitiveScore != 0.7 || row.CognitiveResult != "Very Good" {
		t.Fatalf("回写失败: %+v", row)
	}

	// 未命中任何行要报错
	if err := s.UpdateDecision(ctx, schema.CategoryCalls, 9999, 0, "Normal"); err == nil {
		t.Fatalf("不存在的 ID 应报错")
	}
	if err := s.UpdateDecision(ctx, "NO_SUCH_CATEGORY", id, 0, "Normal"); err == nil {
		t.Fatalf("未知类别应报错")
	}
}

func TestSaveGPSAnalysisWithDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	row := schema.GPSAnalysis{UserUID: "u1", DayAnalyzed: "2026-03-10", UniqueLocations: 2}
	keyLocs := []schema.GPSKeyLocation{
		{KeyLocID: 0, Latitude: 45, Longitude: 7, LocType: "HOME"},
		{KeyLocID: 1, Latitude: 45.018, Longitude: 7, LocType: "NOT_IDENTIFIED"},
	}
	transitions := []schema.GPSTransition{{FromKeyLoc: 0, ToKeyLoc: 1, TravelSec: 3000}}
	features := schema.GPSSpatialFeatures{HullAreaM2: 1e6, MaxDistTimestamp: 1767950000}

	id, err := s.SaveGPSAnalysis(ctx, &row, keyLocs, transitions, &features)
	if err != nil {
		t.Fatalf("SaveGPSAnalysis: %v", err)
	}

	got, err := s.SpatialFeatures(ctx, id)
	if err != nil {
		t.Fatalf("SpatialFeatures: %v", err)
	}
	if got == nil || got.HullAreaM2 != 1e6 {
		t.Fatalf("features=%+v", got)
	}

	// 重复提交不追加明细
	dup := schema.GPSAnalysis{UserUID: "u1", DayAnalyzed: "2026-03-10"}
	id2, err := s.SaveGPSAnalysis(ctx, &dup, keyLocs, transitions, &features)
	if err != nil {
		t.Fatalf("SaveGPSAnalysis 二次: %v", err)
	}
	if id2 != id {
		t.Fatalf("ID 不一致")
	}
	var count int64
	if err := s.db.Model(&schema.GPSKeyLocation{}).Where("analysis_id = ?", id).Count(&count).Error; err != nil {
		t.Fatalf("统计关键位置: %v", err)
	}
	if count != 2 {
		t.Fatalf("关键位置=%d, 期望 2", count)
	}
}
