package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/pkg/config"
	"github.com/metronlab/metron/internal/repository"
	"github.com/metronlab/metron/internal/schema"
	"github.com/metronlab/metron/internal/store"
	"github.com/metronlab/metron/internal/testutil"
	"gorm.io/gorm"
)

type testEnv struct {
	cache   *repository.CacheDB
	storeDB *gorm.DB
	store   *store.Store
	runner  *AnalysisRunner
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	cache := &repository.CacheDB{DB: testutil.OpenCacheDB(t)}
	storeDB := testutil.OpenStoreDB(t)
	st := store.New(storeDB)
	return testEnv{
		cache:   cache,
		storeDB: storeDB,
		store:   st,
		runner:  NewAnalysisRunner(cache, st, time.UTC, 60),
	}
}

// 只有通话数据的一天：其余分析项按数据不足跳过，通话项正常落库
func TestRunUserDayCallsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	day := "2026-03-10"
	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	calls := repository.NewCallRepository(env.cache.DB)
	records := []schema.CallRecord{
		{EventID: "c1", UserUID: "u1", CallDate: noon, CallType: "incoming", DurationSec: 60},
		{EventID: "c2", UserUID: "u1", CallDate: noon.Add(time.Hour), CallType: "missed"},
		{EventID: "c3", UserUID: "u1", CallDate: noon.Add(2 * time.Hour), CallType: "outgoing", DurationSec: 120},
	}
	for i := range records {
		if err := calls.Save(ctx, &records[i]); err != nil {
			t.Fatalf("写入通话记录: %v", err)
		}
	}

	user := schema.User{UID: "u1", AppOrigin: OriginSensors}
	if err := env.runner.RunUserDay(ctx, user, day); err != nil {
		t.Fatalf("RunUserDay: %v", err)
	}

	analysisID, err := env.store.CreateDailyAnalysis(ctx, "u1", day, noon)
	if err != nil || analysisID == 0 {
		t.Fatalf("按天分析事件缺失: id=%d err=%v", analysisID, err)
	}

	var row schema.CallAnalysis
	if err := env.storeDB.Where("user_uid = ? AND day_analyzed = ?", "u1", day).First(&row).Error; err != nil {
		t.Fatalf("通话分析缺失: %v", err)
	}
	if row.TotalCalls != 3 {
		t.Fatalf("TotalCalls=%d, 期望 3", row.TotalCalls)
	}
	// 尚无基线：z 全 0，综合评分 0 → Normal
	if row.CognitiveScore == nil || *row.CognitiveScore != 0 || row.CognitiveResult != "Normal" {
		t.Fatalf("判定=%+v", row)
	}

	// 其余类别不应落库
	var sleepCount int64
	if err := env.storeDB.Model(&schema.SleepAnalysis{}).Count(&sleepCount).Error; err != nil {
		t.Fatalf("统计睡眠行: %v", err)
	}
	if sleepCount != 0 {
		t.Fatalf("不应有睡眠分析: %d", sleepCount)
	}
}

// 键盘端用户：逐会话评分并汇总当天分布
func TestRunUserDayTyping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	day := "2026-03-10"
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	typing := repository.NewTypingRepository(env.cache.DB)
	sessions := []schema.TypingSession{
		{
			SessionUID: "t1", UserUID: "u2", DateCreated: at,
			DurationSec: 120, CharactersTyped: 120, CharactersDeleted: 20, WordsTyped: 24,
			MeanIKI: 0.2, StdDevIKI: 0.05, IKICount: 100,
			AvgPauseWtW: 1.0, AvgPauseCtC: 0.3,
			TotalBackspaces: 15, BackspaceBursts: 3, WordDeletions: 2, PressureSum: 60,
		},
		{
			SessionUID: "t2", UserUID: "u2", DateCreated: at.Add(time.Hour),
			DurationSec: 60, CharactersTyped: 80, CharactersDeleted: 10, WordsTyped: 15,
			MeanIKI: 0.25, StdDevIKI: 0.08, IKICount: 60,
			AvgPauseWtW: 0.8, AvgPauseCtC: 0.2,
			TotalBackspaces: 8, BackspaceBursts: 2, WordDeletions: 1, PressureSum: 40,
		},
	}
	for i := range sessions {
		if err := typing.Save(ctx, &sessions[i]); err != nil {
			t.Fatalf("写入键盘会话: %v", err)
		}
	}

	user := schema.User{UID: "u2", AppOrigin: OriginKeyboard}
	if err := env.runner.RunUserDay(ctx, user, day); err != nil {
		t.Fatalf("RunUserDay: %v", err)
	}

	decisions, err := env.store.TypingDecisionsOfDay(ctx, "u2", day)
	if err != nil {
		t.Fatalf("TypingDecisionsOfDay: %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("会话判定数=%d, 期望 2", len(decisions))
	}
	for _, d := range decisions {
		if d.Decision != "Normal" {
			t.Fatalf("无基线时判定应为 Normal: %+v", d)
		}
	}

	values, err := env.store.TypingMetricValuesOfDay(ctx, "u2", "pressure_intensity", day)
	if err != nil {
		t.Fatalf("TypingMetricValuesOfDay: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("pressure 值数=%d, 期望 2", len(values))
	}

	var stats schema.TypingDailyStats
	if err := env.storeDB.Where("user_uid = ? AND day_analyzed = ?", "u2", day).First(&stats).Error; err != nil {
		t.Fatalf("键盘日统计缺失: %v", err)
	}
	if stats.SessionsCount != 2 || stats.PctNormal != 100 {
		t.Fatalf("日统计=%+v", stats)
	}

	// 重跑同一天应幂等
	if err := env.runner.RunUserDay(ctx, user, day); err != nil {
		t.Fatalf("重跑 RunUserDay: %v", err)
	}
	decisions, _ = env.store.TypingDecisionsOfDay(ctx, "u2", day)
	if len(decisions) != 2 {
		t.Fatalf("重跑后判定数=%d, 期望 2", len(decisions))
	}
}

func TestBatchRunDailyResetsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	users := repository.NewUserRepository(env.cache.DB)
	if err := users.Save(ctx, &schema.User{UID: "u1", AppOrigin: OriginSensors}); err != nil {
		t.Fatalf("写入用户: %v", err)
	}

	batch := NewBatch(env.cache, env.runner, NewNotifier(config.KafkaConfig{}), 2, time.UTC)

	if err := batch.RunDaily(ctx, "not-a-date"); err == nil {
		t.Fatalf("非法日期应报错")
	}

	// 缓存被占用时批次立即拒绝
	release, err := env.cache.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := batch.RunDaily(ctx, "2026-03-10"); !errors.Is(err, repository.ErrCacheBusy) {
		t.Fatalf("err=%v, 期望 ErrCacheBusy", err)
	}
	release()

	if err := batch.RunDaily(ctx, "2026-03-10"); err != nil {
		t.Fatalf("RunDaily: %v", err)
	}

	// 全员成功后缓存重建，用户表清空
	left, err := users.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("缓存未清空: %+v", left)
	}
}

func TestSchedulerNextRun(t *testing.T) {
	s := &Scheduler{runAt: "17:59", loc: time.UTC}

	before := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	next := s.nextRun(before)
	if !next.Equal(time.Date(2026, 3, 10, 17, 59, 0, 0, time.UTC)) {
		t.Fatalf("next=%v, 期望当天 17:59", next)
	}

	after := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	next = s.nextRun(after)
	if !next.Equal(time.Date(2026, 3, 11, 17, 59, 0, 0, time.UTC)) {
		t.Fatalf("next=%v, 期望次日 17:59", next)
	}

	if _, err := NewScheduler(nil, "25:99", time.UTC); err == nil {
		t.Fatalf("非法触发时刻应报错")
	}
}
