package spatial

import (
	"math"
	"sort"
)

const earthRadiusM = 6371000

// haversineM 两点间大圆距离（米）
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	const deg = math.Pi / 180
	phi1, phi2 := lat1*deg, lat2*deg
	dPhi := (lat2 - lat1) * deg
	dLambda := (lon2 - lon1) * deg

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// WGS84 椭球参数
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	utmK0  = 0.9996
	utmE0  = 500000.0 // 东向假偏移
	utmN0S = 10000000.0
)

// utmZone 按平均经度确定 UTM 带号
func utmZone(meanLon float64) int {
	return int((meanLon+180)/6) + 1
}

// utmForward 将经纬度投影到指定 UTM 带的平面坐标（米）。
// 南半球加北向假偏移。
func utmForward(lat, lon float64, zone int, southern bool) (x, y float64) {
	const deg = math.Pi / 180

	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)
	lon0 := float64(zone*6-183) * deg

	phi := lat * deg
	lambda := lon * deg

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	tanPhi := sinPhi / cosPhi

	n := wgs84A / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ep2 * cosPhi * cosPhi
	a := (lambda - lon0) * cosPhi

	// 子午线弧长
	m := wgs84A * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*phi -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*phi) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*phi) -
		(35*e2*e2*e2/3072)*math.Sin(6*phi))

	x = utmK0*n*(a+(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*ep2)*a*a*a*a*a/120) + utmE0
	y = utmK0 * (m + n*tanPhi*(a*a/2+
		(5-t+9*c+4*c*c)*a*a*a*a/24+
		(61-58*t+t*t+600*c-330*ep2)*a*a*a*a*a*a/720))
	if southern {
		y += utmN0S
	}
	return x, y
}

// projectPoints 把一组经纬度投影到由其质心确定的 UTM 带
func projectPoints(points []Point) ([]float64, []float64) {
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	meanLat := sumLat / float64(len(points))
	meanLon := sumLon / float64(len(points))

	zone := utmZone(meanLon)
	southern := meanLat < 0

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = utmForward(p.Lat, p.Lon, zone, southern)
	}
	return xs, ys
}

type xy struct{ x, y float64 }

// convexHull Andrew 单调链，返回逆时针顶点序列
func convexHull(pts []xy) []xy {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].x != pts[j].x {
			return pts[i].x < pts[j].x
		}
		return pts[i].y < pts[j].y
	})

	n := len(pts)
	if n < 3 {
		return pts
	}

	cross := func(o, a, b xy) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}

	hull := make([]xy, 0, 2*n)
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// polygonArea 鞋带公式，顶点需按序排列
func polygonArea(vertices []xy) float64 {
	var sum float64
	n := len(vertices)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += vertices[i].x*vertices[j].y - vertices[j].x*vertices[i].y
	}
	return math.Abs(sum) / 2
}

func polygonPerimeter(vertices []xy) float64 {
	var sum float64
	n := len(vertices)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += math.Hypot(vertices[j].x-vertices[i].x, vertices[j].y-vertices[i].y)
	}
	return sum
}

// eigen2 对称 2x2 协方差矩阵的特征分解，
// 返回降序特征值与第一主轴方向
func eigen2(cxx, cxy, cyy float64) (l1, l2, vx, vy float64) {
	tr := cxx + cyy
	det := cxx*cyy - cxy*cxy
	disc := math.Sqrt(math.Max(0, tr*tr/4-det))
	l1 = tr/2 + disc
	l2 = tr/2 - disc

	if cxy != 0 {
		vx, vy = l1-cyy, cxy
	} else if cxx >= cyy {
		vx, vy = 1, 0
	} else {
		vx, vy = 0, 1
	}
	norm := math.Hypot(vx, vy)
	if norm > 0 {
		vx, vy = vx/norm, vy/norm
	}
	return l1, l2, vx, vy
}
