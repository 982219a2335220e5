package spatial

import "math"

// 关键位置识别参数
const (
	EpsMeters     = 50 // DBSCAN 邻域半径，也是路线吸附半径
	MinSamples    = 60 // 构成关键位置所需的最少定位数
	sampleRateSec = 30 // 采集端的定位采样周期

	homeNightStart = 22 * 3600 // HOME 判定的夜间窗口 [22:00, 06:00]
	homeNightEnd   = 6 * 3600
)

// 关键位置类型
const (
	LocTypeHome          = "HOME"
	LocTypeNotIdentified = "NOT_IDENTIFIED"
)

// KeyLocation 一个识别出的关键位置（簇质心）
type KeyLocation struct {
	ID   int
	Lat  float64
	Lon  float64
	Home bool
}

// Type 关键位置类型标签
func (k KeyLocation) Type() string {
	if k.Home {
		return LocTypeHome
	}
	return LocTypeNotIdentified
}

// identifyKeyLocations 用 DBSCAN 找出定位密集的簇并定位 HOME。
// 质心坐标保留 6 位小数（约 0.1 米精度）。
func identifyKeyLocations(points []Point) []KeyLocation {
	labels := dbscan(points, EpsMeters, MinSamples)

	clusters := map[int][]int{}
	for i, label := range labels {
		if label >= 0 {
			clusters[label] = append(clusters[label], i)
		}
	}
	if len(clusters) == 0 {
		return nil
	}

	locs := make([]KeyLocation, 0, len(clusters))
	for id, idxs := range clusters {
		var sumLat, sumLon float64
		for _, i := range idxs {
			sumLat += points[i].Lat
			sumLon += points[i].Lon
		}
		n := float64(len(idxs))
		locs = append(locs, KeyLocation{
			ID:  id,
			Lat: round6(sumLat / n),
			Lon: round6(sumLon / n),
		})
	}

	markHome(points, labels, locs)
	return locs
}

// markHome 把夜间驻留比例最高的簇标为 HOME。
// 比例以夜间窗口按采样周期的期望定位数为分母；
// 所有簇均无夜间定位时不标注。
func markHome(points []Point, labels []int, locs []KeyLocation) {
	nightCounts := map[int]int{}
	for i, label := range labels {
		if label < 0 {
			continue
		}
		sec := points[i].Time.Hour()*3600 + points[i].Time.Minute()*60 + points[i].Time.Second()
		if sec >= homeNightStart || sec <= homeNightEnd {
			nightCounts[label]++
		}
	}

	// 夜间窗口跨午夜，共 8 小时
	expected := float64((24*3600 - homeNightStart + homeNightEnd) / sampleRateSec)

	maxPct := 0.0
	homeIdx := -1
	for i, loc := range locs {
		pct := float64(nightCounts[loc.ID]) / expected * 100
		if pct > maxPct {
			maxPct = pct
			homeIdx = i
		}
	}
	if homeIdx >= 0 {
		locs[homeIdx].Home = true
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
