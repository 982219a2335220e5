package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

func sample(prev, ts time.Time, confidence, motion float64) schema.MotionSample {
	return schema.MotionSample{TimestampPrev: prev, Timestamp: ts, Confidence: confidence, Motion: motion}
}

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC)
}

func TestDetectSleepWindowsOpensAndCloses(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	samples := []schema.MotionSample{
		sample(at(day, 22, 0), at(day, 22, 5), 50, 0),  // 清醒
		sample(at(day, 23, 0), at(day, 23, 5), 90, 1),  // 入睡
		sample(at(day, 23, 30), at(day, 23, 35), 95, 0),
		sample(at(day.AddDate(0, 0, 1), 7, 0), at(day.AddDate(0, 0, 1), 7, 5), 40, 5), // 醒来
	}

	windows := DetectSleepWindows(samples)
	if len(windows) != 1 {
		t.Fatalf("windows=%d, want 1", len(windows))
	}
	w := windows[0]
	if !w.Start.Equal(at(day, 23, 0)) {
		t.Fatalf("start=%v, want 23:00", w.Start)
	}
	if !w.End.Equal(at(day.AddDate(0, 0, 1), 7, 0)) {
		t.Fatalf("end=%v, want 07:00 next day", w.End)
	}
	if w.DurationMin != 480 {
		t.Fatalf("duration=%v, want 480", w.DurationMin)
	}
}

func TestDetectSleepWindowsIgnoresHighMotionAndShortWindows(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	samples := []schema.MotionSample{
		// 置信度高但动作大，不开窗
		sample(at(day, 23, 0), at(day, 23, 5), 90, 8),
		// 开窗后 10 分钟就关闭，短于 25 分钟被丢弃
		sample(at(day, 23, 10), at(day, 23, 15), 90, 0),
		sample(at(day, 23, 20), at(day, 23, 25), 10, 0),
	}
	if windows := DetectSleepWindows(samples); len(windows) != 0 {
		t.Fatalf("windows=%d, want 0", len(windows))
	}
}

func TestMergeSleepWindowsByGap(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	windows := []SleepWindow{
		{Start: at(day, 23, 0), End: at(day.AddDate(0, 0, 1), 2, 0), DurationMin: 180, ActualMin: 180},
		// 间隔 30 分钟 < 50，应合并
		{Start: at(day.AddDate(0, 0, 1), 2, 30), End: at(day.AddDate(0, 0, 1), 7, 0), DurationMin: 270, ActualMin: 270},
		// 间隔 7 小时，不合并
		{Start: at(day.AddDate(0, 0, 1), 14, 0), End: at(day.AddDate(0, 0, 1), 15, 0), DurationMin: 60, ActualMin: 60},
	}

	merged := MergeSleepWindows(windows)
	if len(merged) != 2 {
		t.Fatalf("merged=%d, want 2", len(merged))
	}
	if merged[0].DurationMin != 480 {
		t.Fatalf("merged duration=%v, want 480", merged[0].DurationMin)
	}
	if merged[0].ActualMin != 450 {
		t.Fatalf("merged actual=%v, want 450", merged[0].ActualMin)
	}
}

func TestAssignSleepToDayKeepsEndDateAndMarksMain(t *testing.T) {
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	prev := day.AddDate(0, 0, -1)
	windows := []SleepWindow{
		// 前夜跨日主睡眠，结束于分析日
		{Start: at(prev, 23, 0), End: at(day, 7, 0), DurationMin: 480},
		// 当日午睡
		{Start: at(day, 14, 0), End: at(day, 15, 0), DurationMin: 60},
		// 次日凌晨结束，不归属当日
		{Start: at(day, 23, 30), End: at(day.AddDate(0, 0, 1), 6, 0), DurationMin: 390},
	}

	assigned := AssignSleepToDay(windows, day)
	if len(assigned) != 2 {
		t.Fatalf("assigned=%d, want 2", len(assigned))
	}
	if assigned[0].Type != SleepMain {
		t.Fatalf("type=%s, want main_sleep", assigned[0].Type)
	}
	if assigned[1].Type != SleepNap {
		t.Fatalf("type=%s, want nap_sleep", assigned[1].Type)
	}
}

func TestNormalizeTotalSleepPiecewise(t *testing.T) {
	cases := []struct {
		min  float64
		want float64
	}{
		{525, 1.0},
		{510, 1.0},
		{540, 1.0},
		{480, 0.9 + 0.1*(30.0/60)},
		{435, 0.75 + 0.14*(15.0/30)},
		{390, 0.5 + 0.24*(30.0/60)},
		{180, 180.0 / 360 * 0.49},
		{570, 1.0 - 30.0/60*0.2},
		{700, 0.8},
	}
	for _, c := range cases {
		got := normalizeTotalSleep(c.min)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("normalizeTotalSleep(%v)=%v, want %v", c.min, got, c.want)
		}
	}
	// 单调性抽查
	if normalizeTotalSleep(300) >= normalizeTotalSleep(400) {
		t.Fatalf("300min 不应优于 400min")
	}
}

func TestScoreSleepQualityIdealNight(t *testing.T) {
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	w := SleepWindow{
		Start:       at(day, 23, 0),
		End:         at(day.AddDate(0, 0, 1), 7, 45),
		DurationMin: 525,
		ActualMin:   525,
	}

	q, err := ScoreSleepQuality(w, 0)
	if err != nil {
		t.Fatalf("ScoreSleepQuality error: %v", err)
	}
	if q.NTS != 1.0 || q.NSE != 1.0 || q.NST != 1.0 || q.NTA != 1.0 {
		t.Fatalf("subscores=%+v, want all 1.0", q)
	}
	if math.Abs(q.SQS-1.0) > 1e-9 {
		t.Fatalf("sqs=%v, want 1.0", q.SQS)
	}
}

func TestScoreSleepQualityScreenPenalty(t *testing.T) {
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	w := SleepWindow{
		Start:       at(day, 23, 0),
		End:         at(day.AddDate(0, 0, 1), 7, 45),
		DurationMin: 525,
		ActualMin:   525,
	}

	// 睡中亮屏 5 分钟 → nst = 0.5
	q, err := ScoreSleepQuality(w, 5*60*1000)
	if err != nil {
		t.Fatalf("ScoreSleepQuality error: %v", err)
	}
	if math.Abs(q.NST-0.5) > 1e-9 {
		t.Fatalf("nst=%v, want 0.5", q.NST)
	}
	// 超过 10 分钟封底为 0
	q, _ = ScoreSleepQuality(w, 20*60*1000)
	if q.NST != 0 {
		t.Fatalf("nst=%v, want 0", q.NST)
	}
}

func TestScoreSleepQualityZeroDuration(t *testing.T) {
	if _, err := ScoreSleepQuality(SleepWindow{}, 0); err == nil {
		t.Fatal("零时长窗口应返回错误")
	}
}

func TestNormalizeTimeAlignment(t *testing.T) {
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	// 23:00 入睡、07:00 起床 → 满分
	if got := normalizeTimeAlignment(at(day, 23, 0), at(day.AddDate(0, 0, 1), 7, 0)); got != 1.0 {
		t.Fatalf("ideal alignment=%v, want 1.0", got)
	}
	// 凌晨 3 点入睡：床铺分 0（偏离 23:00 达 4 小时），起床 11 点也偏离
	late := normalizeTimeAlignment(at(day, 3, 0), at(day, 11, 0))
	if late >= 0.5 {
		t.Fatalf("late alignment=%v, want < 0.5", late)
	}
}
