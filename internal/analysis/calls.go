package analysis

import (
	"strings"

	"github.com/metronlab/metron/internal/schema"
)

// VoIPDescription 第三方应用网络通话的描述标记，
// 此类通话不计入未接比例与平均时长
const VoIPDescription = "VoIP_CALL_THIRD_PARTY_APP"

// CallStats 单日通话行为指标
type CallStats struct {
	MissedRatio    float64 // 未接占比（0-1，不含 VoIP）
	NightRatio     float64 // 夜间通话占比（百分数，含 VoIP）
	DayRatio       float64 // 日间通话占比（百分数，含 VoIP）
	AvgDurationSec float64 // 平均时长（不含 VoIP）
	TotalCalls     int     // 总通话数（含 VoIP）
}

// AnalyzeCalls 计算通话指标。夜间为 22:00 后或 05:00 前，日间为 06:00-22:00。
func AnalyzeCalls(records []schema.CallRecord) (*CallStats, error) {
	if len(records) == 0 {
		return nil, insufficientf("无通话记录")
	}

	var (
		nonVoIP     int
		missed      int
		night       int
		day         int
		durationSum float64
	)
	for _, r := range records {
		hour := r.CallDate.Hour()
		if hour < 5 || hour >= 22 {
			night++
		}
		if hour >= 6 && hour < 22 {
			day++
		}

		if r.Description == VoIPDescription {
			continue
		}
		nonVoIP++
		durationSum += float64(r.DurationSec)
		if strings.Contains(strings.ToUpper(r.Description), "MISSED") {
			missed++
		}
	}

	stats := &CallStats{
		NightRatio: float64(night) / float64(len(records)) * 100,
		DayRatio:   float64(day) / float64(len(records)) * 100,
		TotalCalls: len(records),
	}
	if nonVoIP > 0 {
		stats.MissedRatio = float64(missed) / float64(nonVoIP)
		stats.AvgDurationSec = durationSum / float64(nonVoIP)
	}
	return stats, nil
}
