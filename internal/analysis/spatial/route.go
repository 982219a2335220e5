package spatial

import (
	"sort"
	"time"

	"github.com/metronlab/metron/internal/analysis"
)

// minStaySec 短于该时长的挂靠段视为路过误判，取消挂靠
const minStaySec = 1800

// snapToKeyLocations 把落在关键位置吸附半径内的定位吸附到质心：
// 坐标替换为质心坐标并记录归属。抹平建筑物内的定位噪声，
// 也让后续的驻留/移动切分可以按坐标分段。
func snapToKeyLocations(points []Point, locs []KeyLocation) {
	for i := range points {
		for _, loc := range locs {
			if haversineM(points[i].Lat, points[i].Lon, loc.Lat, loc.Lon) <= EpsMeters {
				points[i].Lat = loc.Lat
				points[i].Lon = loc.Lon
				points[i].keyLoc = loc.ID
				points[i].home = loc.Home
				break
			}
		}
	}
}

type tagKey struct {
	keyLoc int
	lat    float64
	lon    float64
}

func tagOf(p Point) tagKey {
	return tagKey{p.keyLoc, p.Lat, p.Lon}
}

// untagShortStays 取消时长不超过 30 分钟的挂靠段。
// DBSCAN 不含时间维度，途经关键位置附近的定位会被错误挂靠，
// 按驻留时长过滤掉这类误判。
func untagShortStays(points []Point) {
	for _, run := range analysis.Runs(points, tagOf) {
		if run.Key.keyLoc < 0 {
			continue
		}
		segment := points[run.Start:run.End]
		duration := segment[len(segment)-1].Time.Sub(segment[0].Time).Seconds()
		if duration <= minStaySec {
			for i := run.Start; i < run.End; i++ {
				points[i].keyLoc = -1
				points[i].home = false
			}
		}
	}
}

// Stay 在某个关键位置的全天累计驻留
type Stay struct {
	LocationID int
	Lat        float64
	Lon        float64
	TotalSec   float64
	Events     int
	Home       bool
}

// computeStays 把挂靠段按关键位置聚合为驻留统计
func computeStays(points []Point) []Stay {
	byLoc := map[int]*Stay{}
	for _, run := range analysis.Runs(points, tagOf) {
		if run.Key.keyLoc < 0 {
			continue
		}
		segment := points[run.Start:run.End]

		s, ok := byLoc[run.Key.keyLoc]
		if !ok {
			s = &Stay{
				LocationID: run.Key.keyLoc,
				Lat:        run.Key.lat,
				Lon:        run.Key.lon,
				Home:       segment[0].home,
			}
			byLoc[run.Key.keyLoc] = s
		}
		s.TotalSec += segment[len(segment)-1].Time.Sub(segment[0].Time).Seconds()
		s.Events += len(segment)
	}

	stays := make([]Stay, 0, len(byLoc))
	for _, s := range byLoc {
		stays = append(stays, *s)
	}
	sort.Slice(stays, func(i, j int) bool { return stays[i].LocationID < stays[j].LocationID })
	return stays
}

// Transition 两个关键位置之间的一次移动
type Transition struct {
	FromID     int
	ToID       int
	Start      time.Time
	End        time.Time
	TravelSec  float64
	DistanceKm float64
	Events     int
}

// computeTransitions 从未挂靠段推导关键位置间的移动。
// 只统计两端都有挂靠点的内部段；连续多段落在同一对位置之间时
// 合并为一次移动，首尾相同的伪移动剔除。
func computeTransitions(points []Point) []Transition {
	var raw []Transition
	for _, run := range analysis.Runs(points, func(p Point) bool { return p.keyLoc >= 0 }) {
		if run.Key || run.Start == 0 || run.End == len(points) {
			continue
		}
		segment := points[run.Start:run.End]

		var distKm float64
		for i := 1; i < len(segment); i++ {
			distKm += haversineM(segment[i-1].Lat, segment[i-1].Lon, segment[i].Lat, segment[i].Lon) / 1000
		}

		raw = append(raw, Transition{
			FromID:     points[run.Start-1].keyLoc,
			ToID:       points[run.End].keyLoc,
			Start:      segment[0].Time,
			End:        segment[len(segment)-1].Time,
			TravelSec:  segment[len(segment)-1].Time.Sub(segment[0].Time).Seconds(),
			DistanceKm: distKm,
			Events:     len(segment),
		})
	}
	if len(raw) == 0 {
		return nil
	}

	// 合并同一对位置间的连续段
	startID := raw[0].FromID
	var final []Transition
	for i, rc := range raw {
		if i == len(raw)-1 || startID != rc.ToID {
			t := rc
			t.FromID = startID
			final = append(final, t)
			startID = rc.ToID
		}
		if len(final) > 1 && final[len(final)-1].FromID == final[len(final)-1].ToID {
			final = final[:len(final)-1]
		}
	}
	return final
}
