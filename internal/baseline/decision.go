package baseline

import "log/slog"

// Decision 五级判定
const (
	DecisionExcellent = "Excellent"
	DecisionVeryGood  = "Very Good"
	DecisionNormal    = "Normal"
	DecisionVeryBad   = "Very Bad"
	DecisionCritical  = "Critical"
)

// 判定阈值（严格比较）
const (
	thresholdExcellent = 0.965
	thresholdVeryGood  = 0.586
	thresholdVeryBad   = -0.575
	thresholdCritical  = -0.952
)

// Decide 将综合评分映射到五级判定
func Decide(score float64) string {
	switch {
	case score > thresholdExcellent:
		return DecisionExcellent
	case score > thresholdVeryGood:
		return DecisionVeryGood
	case score < thresholdCritical:
		return DecisionCritical
	case score < thresholdVeryBad:
		return DecisionVeryBad
	default:
		return DecisionNormal
	}
}

// Composite 等权、方向归一的综合评分：Σ direction(m)·z(m) / len(metrics)。
// 缺失的 z 分数按 0 计入（不剔除），并记录日志。
func Composite(zScores map[string]float64, metrics []string) float64 {
	if len(metrics) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range metrics {
		z, ok := zScores[m]
		if !ok {
			slog.Warn("综合评分缺少指标 z 分数，按 0 计入", "metric", m)
			continue
		}
		sum += Direction(m) * z
	}
	return sum / float64(len(metrics))
}
