package analysis

import (
	"math"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

// 睡眠窗口类型
const (
	SleepMain = "main_sleep"
	SleepNap  = "nap_sleep"
)

const (
	sleepOpenConfidence  = 75 // 置信度达到该值且动作足够小时进入睡眠
	sleepCloseConfidence = 75 // 置信度跌到该值以下时退出睡眠
	sleepMaxMotion       = 2
	sleepMinWindowMin    = 25 // 短于该时长的窗口丢弃
	sleepMergeGapMin     = 50 // 间隔小于该值的相邻窗口合并
)

// SleepWindow 一段检测到的睡眠窗口
type SleepWindow struct {
	Start       time.Time
	End         time.Time
	DurationMin float64 // 合并后的首尾跨度
	ActualMin   float64 // 各片段时长之和（不含合并间隙）
	Type        string
}

// DetectSleepWindows 在按时间升序的采样序列上扫描原始睡眠窗口。
// 窗口在置信度升至阈值且动作平静时打开，在置信度跌破阈值时关闭。
func DetectSleepWindows(samples []schema.MotionSample) []SleepWindow {
	var windows []SleepWindow
	inSleep := false
	var start time.Time

	for _, s := range samples {
		switch {
		case !inSleep && s.Confidence >= sleepOpenConfidence && s.Motion <= sleepMaxMotion:
			start = s.TimestampPrev
			inSleep = true
		case inSleep && s.Confidence <= sleepCloseConfidence:
			end := s.TimestampPrev
			duration := end.Sub(start).Minutes()
			if duration >= sleepMinWindowMin {
				windows = append(windows, SleepWindow{
					Start:       start,
					End:         end,
					DurationMin: duration,
					ActualMin:   duration,
				})
			}
			inSleep = false
		}
	}
	return windows
}

// MergeSleepWindows 合并间隔小于阈值的相邻窗口。
// 合并后 DurationMin 为整体跨度，ActualMin 为片段时长之和。
func MergeSleepWindows(windows []SleepWindow) []SleepWindow {
	if len(windows) == 0 {
		return nil
	}

	merged := make([]SleepWindow, 0, len(windows))
	cur := windows[0]
	for _, next := range windows[1:] {
		gap := next.Start.Sub(cur.End).Minutes()
		if gap < sleepMergeGapMin {
			cur.End = next.End
			cur.DurationMin = cur.End.Sub(cur.Start).Minutes()
			cur.ActualMin += next.DurationMin
		} else {
			merged = append(merged, cur)
			cur = next
		}
	}
	return append(merged, cur)
}

// AssignSleepToDay 过滤出归属于指定日期的窗口并标注类型。
// 结束日期等于分析日的窗口（含当日小睡与前夜跨日睡眠）归属当日，
// 其余丢弃；时长最长者标注为主睡眠。
func AssignSleepToDay(windows []SleepWindow, day time.Time) []SleepWindow {
	y, m, d := day.Date()

	var assigned []SleepWindow
	for _, w := range windows {
		ey, em, ed := w.End.Date()
		if ey == y && em == m && ed == d {
			assigned = append(assigned, w)
		}
	}
	if len(assigned) == 0 {
		return nil
	}

	maxDuration := assigned[0].DurationMin
	for _, w := range assigned[1:] {
		if w.DurationMin > maxDuration {
			maxDuration = w.DurationMin
		}
	}
	for i := range assigned {
		if assigned[i].DurationMin == maxDuration {
			assigned[i].Type = SleepMain
		} else {
			assigned[i].Type = SleepNap
		}
	}
	return assigned
}

// SleepQuality 主睡眠的质量子分与总分
type SleepQuality struct {
	NTS float64 // 总时长归一化
	NSE float64 // 睡眠效率归一化
	NST float64 // 睡中亮屏惩罚
	NTA float64 // 作息对齐
	SQS float64 // 加权总分
}

// ScoreSleepQuality 计算主睡眠窗口的质量分。
// screenOnMs 为睡眠窗口内的亮屏毫秒数。
func ScoreSleepQuality(w SleepWindow, screenOnMs float64) (*SleepQuality, error) {
	efficiency, err := sleepEfficiency(w)
	if err != nil {
		return nil, err
	}

	nts := normalizeTotalSleep(w.DurationMin)
	nse := math.Min(1.0, efficiency/90)
	nst := math.Max(0.0, 1-screenOnMs/(10*60*1000))
	nta := normalizeTimeAlignment(w.Start, w.End)
	sqs := 0.35*nts + 0.35*nse + 0.15*nst + 0.15*nta

	return &SleepQuality{NTS: nts, NSE: nse, NST: nst, NTA: nta, SQS: sqs}, nil
}

// sleepEfficiency 实际睡眠时长占窗口跨度的百分比
func sleepEfficiency(w SleepWindow) (float64, error) {
	if w.DurationMin == 0 {
		return 0, insufficientf("睡眠窗口时长为 0")
	}
	if w.ActualMin < 0 {
		return 0, insufficientf("实际睡眠时长为负: %f", w.ActualMin)
	}
	return w.ActualMin / w.DurationMin * 100, nil
}

// normalizeTotalSleep 分段线性归一化总睡眠时长，510-540 分钟为最优区间
func normalizeTotalSleep(totalMin float64) float64 {
	switch {
	case totalMin >= 510 && totalMin <= 540:
		return 1.0
	case totalMin >= 450 && totalMin < 510:
		return 0.9 + 0.1*((totalMin-450)/60)
	case totalMin >= 420 && totalMin < 450:
		return 0.75 + 0.14*((totalMin-420)/30)
	case totalMin >= 360 && totalMin < 420:
		return 0.5 + 0.24*((totalMin-360)/60)
	case totalMin < 360:
		return math.Max(0.0, totalMin/360*0.49)
	case totalMin > 540 && totalMin <= 600:
		return 1.0 - (totalMin-540)/60*0.2
	default:
		return 0.8
	}
}

// normalizeTimeAlignment 按入睡/起床时刻与 23:00/07:00 的接近程度打分。
// 入睡落在 20:00 之后或恰好午夜、起床落在 05:00-09:00 视为满分，
// 偏离超过 4 小时记 0 分。
func normalizeTimeAlignment(start, end time.Time) float64 {
	bed := secondsOfDay(start)
	wake := secondsOfDay(end)

	var bedScore float64
	if bed >= 20*3600 || bed == 0 {
		bedScore = 1.0
	} else {
		bedScore = math.Max(0.0, 1-clockDiff(bed, 23*3600)/3600/4)
	}

	var wakeScore float64
	if wake >= 5*3600 && wake <= 9*3600 {
		wakeScore = 1.0
	} else {
		wakeScore = math.Max(0.0, 1-clockDiff(wake, 7*3600)/3600/4)
	}

	return (bedScore + wakeScore) / 2
}

func secondsOfDay(t time.Time) float64 {
	return float64(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// clockDiff 自 target 起顺时针到 sec 的秒数（模 24 小时）
func clockDiff(sec, target float64) float64 {
	return math.Mod(sec-target+86400, 86400)
}
