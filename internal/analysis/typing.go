package analysis

import (
	"math"

	"github.com/metronlab/metron/internal/baseline"
	"github.com/metronlab/metron/internal/schema"
)

// TypingSessionMetrics 从单次键盘会话的聚合计数器推导八项高阶指标。
// 分母不满足正数约束的指标直接跳过，返回的 map 只含可计算项。
func TypingSessionMetrics(s schema.TypingSession) map[string]float64 {
	metrics := map[string]float64{}

	typed := float64(s.CharactersTyped)
	deleted := float64(s.CharactersDeleted)
	words := float64(s.WordsTyped)
	duration := s.DurationSec

	// 按压强度：总压力 / 输入字符数
	if typed > 0 {
		metrics[baseline.MetricPressureIntensity] = s.PressureSum / typed
	}

	// 投入产出比：总压力 / 净产出字符数
	if typed > 0 && deleted > 0 && typed != deleted {
		metrics[baseline.MetricEffortToOutput] = s.PressureSum / (typed - deleted)
	}

	// 节律稳定性：均值占均值加波动的比例，越接近 1 越稳定
	if s.MeanIKI > 0 && s.StdDevIKI > 0 {
		metrics[baseline.MetricRhythmStability] = s.MeanIKI / (s.MeanIKI + s.StdDevIKI)
	}

	// 认知加工指数：词间与字符间最大停顿相对其均值的对数和
	if s.MaxPauseWtW > 0 && s.AvgPauseWtW > 0 && s.MaxPauseCtC > 0 && s.AvgPauseCtC > 0 {
		metrics[baseline.MetricCognitiveIndex] = math.Log(1+s.MaxPauseWtW/s.AvgPauseWtW) +
			math.Log(1+s.MaxPauseCtC/s.AvgPauseCtC)
	}

	// 停顿产出比：键间间隔总时长占会话时长的比例
	if s.IKICount > 0 && s.MeanIKI > 0 && duration > 0 {
		metrics[baseline.MetricPauseToProduction] = float64(s.IKICount) * s.MeanIKI / duration
	}

	// 纠错效率：1 减去删除占输入的比例
	if typed > 0 && deleted > 0 {
		metrics[baseline.MetricCorrectionEfficiency] = 1 - deleted/typed
	}

	// 净产出速率：净字符数 / 会话时长
	if duration > 0 && deleted <= typed {
		metrics[baseline.MetricNetProductionRate] = (typed - deleted) / duration
	}

	// 认知加工效率：单位时间产出词数，按节律波动折减
	if duration > 0 && words > 0 {
		metrics[baseline.MetricCognitiveEfficiency] = words / (duration * (1 + s.StdDevIKI))
	}

	return metrics
}

// TypingDayStats 单日键盘会话决策的分布与总分
type TypingDayStats struct {
	PctExcellent float64
	PctVeryGood  float64
	PctNormal    float64
	PctVeryBad   float64
	PctCritical  float64
	TotalScore   float64
	Sessions     int
}

// DailyTypingStats 汇总一天内各会话的决策分布。
// 总分对极端档加倍计权：(2*优 + 良 - 差 - 2*严重) / 100。
func DailyTypingStats(decisions []string) (*TypingDayStats, error) {
	if len(decisions) == 0 {
		return nil, insufficientf("无会话决策")
	}

	counts := map[string]int{}
	for _, d := range decisions {
		counts[d]++
	}

	pct := func(d string) float64 {
		return float64(counts[d]) / float64(len(decisions)) * 100
	}

	stats := &TypingDayStats{
		PctExcellent: pct(baseline.DecisionExcellent),
		PctVeryGood:  pct(baseline.DecisionVeryGood),
		PctNormal:    pct(baseline.DecisionNormal),
		PctVeryBad:   pct(baseline.DecisionVeryBad),
		PctCritical:  pct(baseline.DecisionCritical),
		Sessions:     len(decisions),
	}
	stats.TotalScore = (2*stats.PctExcellent + stats.PctVeryGood - stats.PctVeryBad - 2*stats.PctCritical) / 100
	return stats, nil
}
