package baseline

import (
	"log/slog"
	"math"
	"sort"
)

// madEpsilon MAD 为 0 时的除零保护
const madEpsilon = 1e-10

// madScale 修正 z 分数的一致性系数（正态分布下 MAD ≈ σ/1.4826）
const madScale = 1.4826

// Mean 算术平均；空输入返回 0
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStd 样本标准差（ddof=1）；n<=1 返回 0
func SampleStd(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	m := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// Median 中位数；空输入返回 0
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MAD 对中位数的绝对偏差中位数
func MAD(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	med := Median(values)
	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = math.Abs(v - med)
	}
	return Median(devs)
}

// ModifiedZ 修正 z 分数：(value - median) / (MAD * 1.4826)。
// value 为空返回 0 并告警；MAD 为 0 时用极小值兜底，永不除零。
func ModifiedZ(value *float64, median, mad float64) float64 {
	if value == nil {
		slog.Warn("z 分数输入为空，按 0 处理")
		return 0
	}
	if mad == 0 {
		mad = madEpsilon
	}
	return (*value - median) / (mad * madScale)
}
