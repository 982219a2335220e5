package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

func TestReconcileScreenTimeConfirmsByUnlock(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := []schema.ScreenSession{
		// 起点与解锁相距 2 秒，可信
		{StartTime: at(day, 9, 0), EndTime: at(day, 9, 10)},
		// 附近无解锁，剔除
		{StartTime: at(day, 12, 0), EndTime: at(day, 12, 30)},
		// 终点不晚于起点，剔除
		{StartTime: at(day, 15, 0), EndTime: at(day, 15, 0)},
	}
	unlocks := []schema.UnlockEvent{
		{Timestamp: at(day, 9, 0).Add(2 * time.Second)},
	}
	samples := []schema.MotionSample{
		{Timestamp: at(day, 20, 0), ScreenOnMs: 0},
	}

	total, intervals, err := ReconcileScreenTime(sessions, unlocks, samples)
	if err != nil {
		t.Fatalf("ReconcileScreenTime error: %v", err)
	}
	if len(intervals) != 1 {
		t.Fatalf("intervals=%d, want 1", len(intervals))
	}
	if total != 600 {
		t.Fatalf("total=%v, want 600", total)
	}
}

func TestReconcileScreenTimeFallbackFromSamples(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := []schema.ScreenSession{
		{StartTime: at(day, 9, 0), EndTime: at(day, 9, 10)},
	}
	unlocks := []schema.UnlockEvent{
		{Timestamp: at(day, 9, 0)},
	}
	samples := []schema.MotionSample{
		// 与主区间无重叠的采样亮屏，补入 5 分钟
		{Timestamp: at(day, 22, 5), ScreenOnMs: 5 * 60 * 1000},
		// 与主区间重叠的采样亮屏，忽略
		{Timestamp: at(day, 9, 8), ScreenOnMs: 2 * 60 * 1000},
	}

	total, intervals, err := ReconcileScreenTime(sessions, unlocks, samples)
	if err != nil {
		t.Fatalf("ReconcileScreenTime error: %v", err)
	}
	if len(intervals) != 2 {
		t.Fatalf("intervals=%d, want 2", len(intervals))
	}
	if total != 900 {
		t.Fatalf("total=%v, want 900", total)
	}
}

func TestReconcileScreenTimeInsufficient(t *testing.T) {
	_, _, err := ReconcileScreenTime(nil, nil, []schema.MotionSample{{}})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err=%v, want ErrInsufficientData", err)
	}
	_, _, err = ReconcileScreenTime([]schema.ScreenSession{{}}, nil, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err=%v, want ErrInsufficientData", err)
	}
}

func TestMergeIntervalsOverlapping(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	primary := []Interval{
		{Start: at(day, 9, 0), End: at(day, 9, 30)},
		{Start: at(day, 9, 20), End: at(day, 9, 50)},
	}
	merged := MergeIntervals(primary, nil)
	if len(merged) != 1 {
		t.Fatalf("merged=%d, want 1", len(merged))
	}
	if !merged[0].End.Equal(at(day, 9, 50)) {
		t.Fatalf("end=%v, want 09:50", merged[0].End)
	}
}

func TestMergeIntervalsIdempotent(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	primary := []Interval{
		{Start: at(day, 9, 0), End: at(day, 9, 30)},
		{Start: at(day, 9, 20), End: at(day, 9, 50)},
		{Start: at(day, 14, 0), End: at(day, 14, 10)},
	}
	fallback := []Interval{
		{Start: at(day, 9, 40), End: at(day, 10, 0)},
		{Start: at(day, 20, 0), End: at(day, 20, 5)},
	}
	merged := MergeIntervals(primary, fallback)

	again := MergeIntervals(merged, merged)
	if len(again) != len(merged) {
		t.Fatalf("重复合并后区间数=%d, 期望 %d", len(again), len(merged))
	}
	for i := range merged {
		if !again[i].Start.Equal(merged[i].Start) || !again[i].End.Equal(merged[i].End) {
			t.Fatalf("第 %d 个区间变化: %v-%v != %v-%v",
				i, again[i].Start, again[i].End, merged[i].Start, merged[i].End)
		}
	}
}

func TestScreenOnDuringClipsWindow(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	intervals := []Interval{
		{Start: at(day, 22, 50), End: at(day, 23, 10)},
		{Start: at(day.AddDate(0, 0, 1), 8, 0), End: at(day.AddDate(0, 0, 1), 8, 30)},
	}
	// 窗口 23:00-07:00：第一段只有 10 分钟落入，第二段完全在外
	got := ScreenOnDuring(intervals, at(day, 23, 0), at(day.AddDate(0, 0, 1), 7, 0))
	if got != 600 {
		t.Fatalf("seconds=%v, want 600", got)
	}
}

func TestCircadianScreenTimeSections(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	intervals := []Interval{
		{Start: at(day, 7, 0), End: at(day, 7, 30)},   // morning 1800s
		{Start: at(day, 13, 0), End: at(day, 13, 30)}, // afternoon 1800s
		{Start: at(day, 23, 0), End: at(day, 23, 30)}, // late_evening 1800s
	}
	shares := CircadianScreenTime(intervals, 5400)
	if len(shares) != 3 {
		t.Fatalf("shares=%d, want 3", len(shares))
	}
	for _, s := range shares {
		if math.Abs(s.Percentage-33.33) > 0.01 {
			t.Fatalf("section %s pct=%v, want 33.33", s.Section, s.Percentage)
		}
	}
	if shares[0].Section != "morning" {
		t.Fatalf("first section=%s, want morning", shares[0].Section)
	}
}

func TestLowLightSeconds(t *testing.T) {
	intervals := []schema.LowLightInterval{
		{DurationMs: 90_000},
		{DurationMs: 30_000},
	}
	if got := LowLightSeconds(intervals); got != 120 {
		t.Fatalf("seconds=%v, want 120", got)
	}
}

func TestTopAppsAggregatesAndLimits(t *testing.T) {
	usages := []AppUsage{
		{AppName: "chat", TimeUsedSec: 100},
		{AppName: "chat", TimeUsedSec: 50},
		{AppName: "mail", TimeUsedSec: 120},
		{AppName: "maps", TimeUsedSec: 30},
		{AppName: "music", TimeUsedSec: 10},
	}
	top := TopApps(usages, 3)
	if len(top) != 3 {
		t.Fatalf("top=%d, want 3", len(top))
	}
	if top[0].AppName != "chat" || top[0].TimeUsedSec != 150 {
		t.Fatalf("first=%+v, want chat/150", top[0])
	}
	if top[1].AppName != "mail" || top[2].AppName != "maps" {
		t.Fatalf("order=%v/%v, want mail/maps", top[1].AppName, top[2].AppName)
	}
}
