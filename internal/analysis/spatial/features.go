package spatial

import (
	"math"
	"sort"
	"time"

	"github.com/metronlab/metron/internal/analysis"
)

// Point 一条清洗前的定位记录
type Point struct {
	ID            string
	Lat           float64
	Lon           float64
	Accuracy      float64
	Bearing       float64
	Speed         float64
	SpeedAccuracy float64
	Time          time.Time

	keyLoc int // 归属关键位置，-1 表示未归属
	home   bool
}

// HullInfo 凸包面积、周长与紧凑度
type HullInfo struct {
	AreaM2      float64
	PerimeterM  float64
	Compactness float64
}

// SDEInfo 标准差椭圆
type SDEInfo struct {
	CenterLat float64
	CenterLon float64
	WidthM    float64
	HeightM   float64
	AngleDeg  float64
	AreaM2    float64
}

// MaxDistInfo 离家最远点
type MaxDistInfo struct {
	DistanceKm float64
	At         time.Time
	Lat        float64
	Lon        float64
}

// Result 单日移动性分析结果
type Result struct {
	Stays       []Stay
	Transitions []Transition

	TimeInHomeSec    float64
	TimeTravelingSec float64
	TimeOutOfHomeSec float64
	DistanceKm       float64
	AvgLocationHours float64
	UniqueLocations  int
	TotalLocations   int
	FirstMove        *time.Time
	Entropy          float64 // nats
	ActivePeriod     int     // 1 早 / 2 平 / 3 晚，0 表示无移动

	Hull    HullInfo
	SDE     SDEInfo
	MaxDist MaxDistInfo
}

// Analyze 执行完整的单日移动性分析：清洗、关键位置识别、
// 路线平滑、驻留与移动统计，以及空间几何特征。
func Analyze(points []Point) (*Result, error) {
	cleaned, err := Clean(points)
	if err != nil {
		return nil, err
	}

	locs := identifyKeyLocations(cleaned)
	if len(locs) == 0 {
		return nil, insufficientf("未识别出关键位置")
	}

	var home *KeyLocation
	for i := range locs {
		if locs[i].Home {
			home = &locs[i]
			break
		}
	}
	if home == nil {
		return nil, insufficientf("未识别出 HOME 位置")
	}

	snapToKeyLocations(cleaned, locs)
	untagShortStays(cleaned)

	stays := computeStays(cleaned)
	if len(stays) == 0 {
		return nil, insufficientf("无驻留数据")
	}

	var transitions []Transition
	if len(stays) > 1 {
		transitions = computeTransitions(cleaned)
		if len(transitions) == 0 {
			return nil, insufficientf("存在多个关键位置但未发现移动")
		}
	}

	res := &Result{
		Stays:           stays,
		Transitions:     transitions,
		UniqueLocations: len(locs),
		TotalLocations:  len(locs),
		Entropy:         stayEntropy(stays),
		ActivePeriod:    activePeriod(transitions),
		Hull:            hullFeatures(cleaned),
		SDE:             sdeFeatures(cleaned),
		MaxDist:         maxDistanceFromHome(cleaned, home.Lat, home.Lon),
	}

	var nonHomeSec, nonHomeCount float64
	for _, s := range stays {
		if s.Home {
			res.TimeInHomeSec += s.TotalSec
		} else {
			nonHomeSec += s.TotalSec
			nonHomeCount++
		}
	}
	for _, t := range transitions {
		res.TimeTravelingSec += t.TravelSec
		res.DistanceKm += t.DistanceKm
	}
	res.TimeOutOfHomeSec = res.TimeTravelingSec + nonHomeSec
	if nonHomeCount > 0 {
		res.AvgLocationHours = nonHomeSec / nonHomeCount / 3600
	}

	if len(transitions) > 0 {
		first := transitions[0].Start
		for _, t := range transitions[1:] {
			if t.Start.Before(first) {
				first = t.Start
			}
		}
		res.FirstMove = &first
	}

	return res, nil
}

// stayEntropy 驻留时长分布的香农熵（nats）
func stayEntropy(stays []Stay) float64 {
	var total float64
	for _, s := range stays {
		total += s.TotalSec
	}
	if total <= 0 {
		return 0
	}

	var h float64
	for _, s := range stays {
		p := s.TotalSec / total
		if p > 0 {
			h += p * math.Log(p)
		}
	}
	return -h
}

// activePeriod 按移动起始时刻归类：早晨多记 1，晚间多记 3，否则 2
func activePeriod(transitions []Transition) int {
	if len(transitions) == 0 {
		return 0
	}

	morning, evening := 0, 0
	for _, t := range transitions {
		hour := t.Start.Hour()
		switch {
		case hour >= 6 && hour < 12:
			morning++
		case hour >= 18:
			evening++
		}
	}
	switch {
	case morning > evening:
		return 1
	case evening > morning:
		return 3
	default:
		return 2
	}
}

// 凸包退化判定：两个方向的平面展开都不足 10 米视为单点
const hullMinSpreadM = 10

func hullFeatures(points []Point) HullInfo {
	if len(points) < 3 {
		return HullInfo{}
	}

	xs, ys := projectPoints(points)
	if spread(xs) < hullMinSpreadM && spread(ys) < hullMinSpreadM {
		return HullInfo{}
	}

	unique := map[xy]bool{}
	for i := range xs {
		unique[xy{xs[i], ys[i]}] = true
	}
	if len(unique) < 3 {
		return HullInfo{}
	}
	pts := make([]xy, 0, len(unique))
	for p := range unique {
		pts = append(pts, p)
	}

	hull := convexHull(pts)
	if len(hull) < 3 {
		return HullInfo{}
	}

	area := polygonArea(hull)
	perimeter := polygonPerimeter(hull)

	info := HullInfo{AreaM2: area, PerimeterM: perimeter}
	if area > 0 {
		info.Compactness = perimeter / (2 * math.Sqrt(math.Pi*area))
	}
	return info
}

// 标准差椭圆退化判定：平面展开不足 1 米
const sdeMinSpreadM = 1

func sdeFeatures(points []Point) SDEInfo {
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(points))
	info := SDEInfo{CenterLat: sumLat / n, CenterLon: sumLon / n}

	if len(points) < 2 {
		return info
	}

	xs, ys := projectPoints(points)
	if spread(xs) < sdeMinSpreadM && spread(ys) < sdeMinSpreadM {
		return info
	}

	var cx, cy float64
	for i := range xs {
		cx += xs[i]
		cy += ys[i]
	}
	cx /= n
	cy /= n

	var cxx, cxy, cyy float64
	for i := range xs {
		dx, dy := xs[i]-cx, ys[i]-cy
		cxx += dx * dx
		cxy += dx * dy
		cyy += dy * dy
	}
	cxx /= n
	cxy /= n
	cyy /= n

	l1, l2, vx, vy := eigen2(cxx, cxy, cyy)

	info.WidthM = 2 * math.Sqrt(math.Max(0, l1))
	info.HeightM = 2 * math.Sqrt(math.Max(0, l2))
	info.AngleDeg = math.Atan2(vy, vx) * 180 / math.Pi
	info.AreaM2 = math.Pi * (info.WidthM / 2) * (info.HeightM / 2)
	return info
}

func maxDistanceFromHome(points []Point, homeLat, homeLon float64) MaxDistInfo {
	var info MaxDistInfo
	for _, p := range points {
		distKm := haversineM(homeLat, homeLon, p.Lat, p.Lon) / 1000
		if distKm > info.DistanceKm {
			info.DistanceKm = distKm
			info.At = p.Time
			info.Lat = p.Lat
			info.Lon = p.Lon
		}
	}
	return info
}

func spread(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

func sortByTime(points []Point) {
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
}

func insufficientf(format string, args ...any) error {
	return analysis.WrapInsufficient(format, args...)
}
