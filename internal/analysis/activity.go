package analysis

import (
	"math"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

// ActivityTypes 活动识别的全部类型
var ActivityTypes = []string{"still", "tilting", "unknown", "on_foot", "in_vehicle", "walking", "running", "on_bicycle"}

// 视为身体活动的类型
var activeTypes = map[string]bool{
	"on_foot":    true,
	"in_vehicle": true,
	"walking":    true,
	"running":    true,
	"on_bicycle": true,
}

// 久坐占比统计的活跃时段
const (
	inactivityStartHour = 10
	inactivityEndHour   = 22
)

// ActivityStats 单日活动行为指标
type ActivityStats struct {
	Percentages        map[string]float64            // 各类型占比（百分数）
	SwitchingFrequency int                           // 活动切换次数
	ActiveMinutes      int                           // 活跃分钟数
	Entropy            float64                       // 活动熵（bit）
	InactivityPct      float64                       // 活跃时段内静止占比
	SectionPercentages map[string]map[string]float64 // 时段 -> 类型 -> 占比
}

// AnalyzeActivity 计算活动识别事件的行为指标，events 需按时间升序
func AnalyzeActivity(events []schema.ActivityEvent) (*ActivityStats, error) {
	if len(events) == 0 {
		return nil, insufficientf("无活动识别数据")
	}

	stats := &ActivityStats{
		Percentages:        typePercentages(events),
		SwitchingFrequency: switchingFrequency(events),
		ActiveMinutes:      activeMinutes(events),
		Entropy:            activityEntropy(events),
		InactivityPct:      inactivityPercentage(events),
		SectionPercentages: sectionPercentages(events),
	}
	return stats, nil
}

func typePercentages(events []schema.ActivityEvent) map[string]float64 {
	counts := map[string]int{}
	for _, e := range events {
		counts[e.ActivityType]++
	}

	pct := make(map[string]float64, len(ActivityTypes))
	for _, t := range ActivityTypes {
		pct[t] = float64(counts[t]) / float64(len(events)) * 100
	}
	return pct
}

// switchingFrequency 统计每天内相邻事件活动类型的变化次数，
// 切到 unknown 不算切换
func switchingFrequency(events []schema.ActivityEvent) int {
	total := 0
	for _, run := range Runs(events, eventDate) {
		group := events[run.Start:run.End]
		for i := 1; i < len(group); i++ {
			if group[i].ActivityType != "unknown" && group[i].ActivityType != group[i-1].ActivityType {
				total++
			}
		}
	}
	return total
}

// activeMinutes 每天统计活动类型落在身体活动集合的不同分钟数
func activeMinutes(events []schema.ActivityEvent) int {
	total := 0
	for _, run := range Runs(events, eventDate) {
		minutes := map[time.Time]bool{}
		for _, e := range events[run.Start:run.End] {
			if activeTypes[e.ActivityType] {
				minutes[e.Timestamp.Truncate(time.Minute)] = true
			}
		}
		total += len(minutes)
	}
	return total
}

// activityEntropy 每天对非 unknown 类型分布计算香农熵（以 2 为底，
// 保留 3 位小数），再按天累加
func activityEntropy(events []schema.ActivityEvent) float64 {
	var total float64
	for _, run := range Runs(events, eventDate) {
		counts := map[string]int{}
		n := 0
		for _, e := range events[run.Start:run.End] {
			if e.ActivityType != "unknown" {
				counts[e.ActivityType]++
				n++
			}
		}
		if n == 0 {
			continue
		}

		var h float64
		for _, c := range counts {
			p := float64(c) / float64(n)
			h -= p * math.Log2(p)
		}
		total += math.Round(h*1000) / 1000
	}
	return total
}

// inactivityPercentage 活跃时段 [10,22) 内（剔除 unknown）静止事件占比
func inactivityPercentage(events []schema.ActivityEvent) float64 {
	still, total := 0, 0
	for _, e := range events {
		hour := e.Timestamp.Hour()
		if e.ActivityType == "unknown" || hour < inactivityStartHour || hour >= inactivityEndHour {
			continue
		}
		total++
		if e.ActivityType == "still" {
			still++
		}
	}
	if total == 0 || still == 0 {
		return 0
	}
	return float64(still) / float64(total) * 100
}

func sectionPercentages(events []schema.ActivityEvent) map[string]map[string]float64 {
	counts := map[string]map[string]int{}
	totals := map[string]int{}
	for _, e := range events {
		section := sectionOfHour(e.Timestamp.Hour())
		if counts[section] == nil {
			counts[section] = map[string]int{}
		}
		counts[section][e.ActivityType]++
		totals[section]++
	}

	pct := map[string]map[string]float64{}
	for section, types := range counts {
		pct[section] = map[string]float64{}
		for t, c := range types {
			pct[section][t] = float64(c) / float64(totals[section]) * 100
		}
	}
	return pct
}

func eventDate(e schema.ActivityEvent) string {
	return e.Timestamp.Format("2006-01-02")
}
