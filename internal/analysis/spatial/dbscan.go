package spatial

// dbscan 基于大圆距离的密度聚类。
// 返回与 points 对齐的簇标签，-1 表示噪声。
// O(n^2)，单日单用户的定位量级下可接受。
func dbscan(points []Point, epsMeters float64, minPts int) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -2 // 未访问
	}

	neighbors := func(i int) []int {
		var out []int
		for j := 0; j < n; j++ {
			if haversineM(points[i].Lat, points[i].Lon, points[j].Lat, points[j].Lon) <= epsMeters {
				out = append(out, j)
			}
		}
		return out
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != -2 {
			continue
		}
		nbs := neighbors(i)
		if len(nbs) < minPts {
			labels[i] = -1
			continue
		}

		labels[i] = cluster
		queue := append([]int(nil), nbs...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == -1 {
				labels[j] = cluster // 噪声点转为边界点
			}
			if labels[j] != -2 {
				continue
			}
			labels[j] = cluster
			jnbs := neighbors(j)
			if len(jnbs) >= minPts {
				queue = append(queue, jnbs...)
			}
		}
		cluster++
	}
	return labels
}
