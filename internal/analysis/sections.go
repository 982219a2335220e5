package analysis

// 昼夜节律时段划分，小时为半开区间 [start, end)
var daySections = []struct {
	name  string
	start int
	end   int
}{
	{"night", 0, 6},
	{"morning", 6, 12},
	{"afternoon", 12, 18},
	{"evening", 18, 22},
	{"late_evening", 22, 24},
}

// DaySectionNames 按时间顺序返回所有时段名
func DaySectionNames() []string {
	names := make([]string, len(daySections))
	for i, s := range daySections {
		names[i] = s.name
	}
	return names
}

func sectionOfHour(hour int) string {
	for _, s := range daySections {
		if hour >= s.start && hour < s.end {
			return s.name
		}
	}
	return "unknown"
}
