package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

// unlockMatchWindowSec 屏幕会话与解锁事件的最大匹配间隔
const unlockMatchWindowSec = 3

// Interval 一段亮屏区间
type Interval struct {
	Start time.Time
	End   time.Time
}

// ReconcileScreenTime 综合屏幕会话、解锁事件与睡眠采样估算总亮屏时长。
// 屏幕会话只有在附近存在解锁事件时才可信；睡眠采样里的亮屏计数
// 用于补齐广播遗漏的区间。返回总秒数与合并后的区间列表。
func ReconcileScreenTime(sessions []schema.ScreenSession, unlocks []schema.UnlockEvent, samples []schema.MotionSample) (float64, []Interval, error) {
	if len(sessions) == 0 {
		return 0, nil, insufficientf("无屏幕会话数据")
	}
	if len(samples) == 0 {
		return 0, nil, insufficientf("无睡眠采样数据")
	}

	// 只保留起点与某次解锁相距 3 秒以内的会话
	var confirmed []Interval
	for _, s := range sessions {
		if !s.EndTime.After(s.StartTime) {
			continue
		}
		for _, u := range unlocks {
			if math.Abs(s.StartTime.Sub(u.Timestamp).Seconds()) <= unlockMatchWindowSec {
				confirmed = append(confirmed, Interval{Start: s.StartTime, End: s.EndTime})
				break
			}
		}
	}

	// 采样回溯出的亮屏区间作为补充
	var fallback []Interval
	for _, s := range samples {
		if s.ScreenOnMs > 0 {
			start := s.Timestamp.Add(-time.Duration(s.ScreenOnMs) * time.Millisecond)
			if s.Timestamp.After(start) {
				fallback = append(fallback, Interval{Start: start, End: s.Timestamp})
			}
		}
	}

	merged := MergeIntervals(confirmed, fallback)

	var totalSec float64
	for _, iv := range merged {
		totalSec += iv.End.Sub(iv.Start).Seconds()
	}
	return totalSec, merged, nil
}

// MergeIntervals 合并两组区间：主区间全部保留，
// 补充区间只在不与任何主区间重叠时加入，最后合并重叠部分。
func MergeIntervals(primary, fallback []Interval) []Interval {
	all := make([]Interval, len(primary))
	copy(all, primary)

	for _, f := range fallback {
		overlaps := false
		for _, p := range all {
			if p.Start.Before(f.End) && f.Start.Before(p.End) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			all = append(all, f)
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })

	var merged []Interval
	for _, iv := range all {
		if len(merged) == 0 {
			merged = append(merged, iv)
			continue
		}
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}

// ScreenOnDuring 截取与给定窗口重叠部分的亮屏秒数
func ScreenOnDuring(intervals []Interval, start, end time.Time) float64 {
	var total float64
	for _, iv := range intervals {
		s, e := iv.Start, iv.End
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		if e.After(s) {
			total += e.Sub(s).Seconds()
		}
	}
	return total
}

// DaySectionShare 某时段的亮屏时长占比
type DaySectionShare struct {
	Section     string
	DurationSec float64
	Percentage  float64
}

// CircadianScreenTime 按区间起始小时把亮屏时长分配到昼夜节律时段
func CircadianScreenTime(intervals []Interval, totalSec float64) []DaySectionShare {
	if totalSec <= 0 {
		return nil
	}

	bySection := map[string]float64{}
	for _, iv := range intervals {
		section := sectionOfHour(iv.Start.Hour())
		bySection[section] += iv.End.Sub(iv.Start).Seconds()
	}

	shares := make([]DaySectionShare, 0, len(bySection))
	for _, s := range daySections {
		dur, ok := bySection[s.name]
		if !ok {
			continue
		}
		shares = append(shares, DaySectionShare{
			Section:     s.name,
			DurationSec: dur,
			Percentage:  math.Round(dur/totalSec*100*100) / 100,
		})
	}
	return shares
}

// LowLightSeconds 低光照区间的总秒数
func LowLightSeconds(intervals []schema.LowLightInterval) float64 {
	var totalMs float64
	for _, iv := range intervals {
		totalMs += float64(iv.DurationMs)
	}
	return totalMs / 1000
}

// AppUsage 单个应用的累计使用时长
type AppUsage struct {
	AppName     string
	TimeUsedSec float64
}

// TopApps 按使用时长聚合并取前 n 个应用
func TopApps(usages []AppUsage, n int) []AppUsage {
	totals := map[string]float64{}
	for _, u := range usages {
		totals[u.AppName] += u.TimeUsedSec
	}

	aggregated := make([]AppUsage, 0, len(totals))
	for name, sec := range totals {
		aggregated = append(aggregated, AppUsage{AppName: name, TimeUsedSec: sec})
	}
	sort.Slice(aggregated, func(i, j int) bool {
		if aggregated[i].TimeUsedSec != aggregated[j].TimeUsedSec {
			return aggregated[i].TimeUsedSec > aggregated[j].TimeUsedSec
		}
		return aggregated[i].AppName < aggregated[j].AppName
	})

	if len(aggregated) > n {
		aggregated = aggregated[:n]
	}
	return aggregated
}
