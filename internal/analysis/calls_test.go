package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

func call(hour int, callType, desc string, durationSec int64) schema.CallRecord {
	return schema.CallRecord{
		CallDate:    time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC),
		CallType:    callType,
		Description: desc,
		DurationSec: durationSec,
	}
}

func TestAnalyzeCallsEmpty(t *testing.T) {
	if _, err := AnalyzeCalls(nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err=%v, want ErrInsufficientData", err)
	}
}

func TestAnalyzeCallsRatios(t *testing.T) {
	records := []schema.CallRecord{
		call(10, "incoming", "Incoming call", 120),
		call(14, "missed", "Missed call", 0),
		call(23, "outgoing", "Outgoing call", 60), // 夜间
		call(3, "incoming", VoIPDescription, 300), // VoIP，夜间
	}

	stats, err := AnalyzeCalls(records)
	if err != nil {
		t.Fatalf("AnalyzeCalls error: %v", err)
	}

	if stats.TotalCalls != 4 {
		t.Fatalf("total=%d, want 4", stats.TotalCalls)
	}
	// 未接比例基于非 VoIP 通话: 1/3
	if math.Abs(stats.MissedRatio-1.0/3) > 1e-9 {
		t.Fatalf("missed=%v, want 1/3", stats.MissedRatio)
	}
	// 夜间占比含 VoIP: 2/4 = 50%
	if stats.NightRatio != 50 {
		t.Fatalf("night=%v, want 50", stats.NightRatio)
	}
	// 日间 [6,22): 2/4 = 50%
	if stats.DayRatio != 50 {
		t.Fatalf("day=%v, want 50", stats.DayRatio)
	}
	// 平均时长不含 VoIP: (120+0+60)/3
	if math.Abs(stats.AvgDurationSec-60) > 1e-9 {
		t.Fatalf("avg=%v, want 60", stats.AvgDurationSec)
	}
}

func TestAnalyzeCallsAllVoIP(t *testing.T) {
	records := []schema.CallRecord{
		call(10, "incoming", VoIPDescription, 100),
		call(11, "incoming", VoIPDescription, 200),
	}
	stats, err := AnalyzeCalls(records)
	if err != nil {
		t.Fatalf("AnalyzeCalls error: %v", err)
	}
	if stats.MissedRatio != 0 || stats.AvgDurationSec != 0 {
		t.Fatalf("voip-only stats=%+v, want zero ratio/avg", stats)
	}
	if stats.TotalCalls != 2 {
		t.Fatalf("total=%d, want 2", stats.TotalCalls)
	}
}

func TestAnalyzeCallsMissedMatchIsCaseInsensitive(t *testing.T) {
	records := []schema.CallRecord{
		call(10, "missed", "missed call (rejected)", 0),
		call(11, "incoming", "Incoming", 60),
	}
	stats, err := AnalyzeCalls(records)
	if err != nil {
		t.Fatalf("AnalyzeCalls error: %v", err)
	}
	if stats.MissedRatio != 0.5 {
		t.Fatalf("missed=%v, want 0.5", stats.MissedRatio)
	}
}
