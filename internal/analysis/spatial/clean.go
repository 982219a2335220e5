package spatial

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/metronlab/metron/internal/analysis"
)

// 清洗参数
const (
	accuracyMaxM      = 50    // 精度阈值，超出的定位丢弃
	minSpanHours      = 16    // 全天数据的最小覆盖时长
	maxGapSec         = 1680  // 相邻定位的最大允许间隔（28 分钟）
	outlierZThreshold = 15000 // 离群点的 MAD z 分数阈值
	isolationM        = 500   // 与任意邻点的最大孤立距离
)

// Clean 清洗单日定位数据：过滤低精度点、校验覆盖度与连续性、
// 折叠静止重复点、剔除离群点。返回按时间升序的结果。
func Clean(points []Point) ([]Point, error) {
	filtered := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Accuracy <= accuracyMaxM {
			p.keyLoc = -1
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return nil, insufficientf("无满足精度要求的定位")
	}
	sortByTime(filtered)

	span := filtered[len(filtered)-1].Time.Sub(filtered[0].Time)
	if span < minSpanHours*time.Hour {
		return nil, insufficientf("定位覆盖不足 %d 小时: %.1fh", minSpanHours, span.Hours())
	}

	for i := 1; i < len(filtered); i++ {
		gap := filtered[i].Time.Sub(filtered[i-1].Time).Seconds()
		if gap > maxGapSec {
			return nil, insufficientf("定位间断超过 %d 秒: %.0fs @ %s",
				maxGapSec, gap, filtered[i].Time.Format(time.RFC3339))
		}
	}

	collapsed := collapseDuplicateRuns(filtered)
	cleaned := removeMADOutliers(collapsed)
	cleaned = removeIsolated(cleaned)
	if len(cleaned) == 0 {
		return nil, insufficientf("清洗后无定位数据")
	}
	return cleaned, nil
}

type coordKey struct{ lat, lon float64 }

// collapseDuplicateRuns 把坐标完全相同的连续定位段折叠成一条
// 中位数代表点，削弱静止期的采样权重
func collapseDuplicateRuns(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, run := range analysis.Runs(points, func(p Point) coordKey {
		return coordKey{p.Lat, p.Lon}
	}) {
		segment := points[run.Start:run.End]
		if len(segment) < 2 {
			out = append(out, segment[0])
			continue
		}
		out = append(out, medianPoint(segment))
	}
	sortByTime(out)
	return out
}

// medianPoint 以段内各字段的中位数构造代表点，
// 坐标取段首点，事件 ID 重新生成
func medianPoint(segment []Point) Point {
	times := make([]time.Time, len(segment))
	acc := make([]float64, len(segment))
	bearing := make([]float64, len(segment))
	speed := make([]float64, len(segment))
	speedAcc := make([]float64, len(segment))
	for i, p := range segment {
		times[i] = p.Time
		acc[i] = p.Accuracy
		bearing[i] = p.Bearing
		speed[i] = p.Speed
		speedAcc[i] = p.SpeedAccuracy
	}

	return Point{
		ID:            uuid.NewString(),
		Lat:           segment[0].Lat,
		Lon:           segment[0].Lon,
		Accuracy:      medianFloat(acc),
		Bearing:       medianFloat(bearing),
		Speed:         medianFloat(speed),
		SpeedAccuracy: medianFloat(speedAcc),
		Time:          medianTime(times),
		keyLoc:        -1,
	}
}

// removeMADOutliers 按各点到坐标中位数的欧氏距离（度）计算
// MAD z 分数，剔除超出阈值的点。MAD 为 0 时不剔除。
func removeMADOutliers(points []Point) []Point {
	if len(points) < 2 {
		return points
	}

	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Lat
		lons[i] = p.Lon
	}
	medLat, medLon := medianFloat(lats), medianFloat(lons)

	dists := make([]float64, len(points))
	for i, p := range points {
		dists[i] = math.Hypot(p.Lat-medLat, p.Lon-medLon)
	}
	medDist := medianFloat(dists)

	dev := make([]float64, len(points))
	for i, d := range dists {
		dev[i] = math.Abs(d - medDist)
	}
	mad := medianFloat(dev)
	if mad == 0 {
		return points
	}

	kept := make([]Point, 0, len(points))
	for i, p := range points {
		z := 0.6745 * (dists[i] - medDist) / mad
		if z <= outlierZThreshold {
			kept = append(kept, p)
		}
	}
	return kept
}

// removeIsolated 剔除与任何其他点的距离都超过阈值的孤立点
func removeIsolated(points []Point) []Point {
	if len(points) < 2 {
		return points
	}

	kept := make([]Point, 0, len(points))
	for i, p := range points {
		for j, q := range points {
			if i == j {
				continue
			}
			if haversineM(p.Lat, p.Lon, q.Lat, q.Lon) < isolationM {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

func medianFloat(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func medianTime(times []time.Time) time.Time {
	sorted := append([]time.Time(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	a, b := sorted[n/2-1], sorted[n/2]
	return a.Add(b.Sub(a) / 2)
}
