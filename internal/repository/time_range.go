package repository

import (
	"fmt"
	"time"
)

// DayRange 将 YYYY-MM-DD 解析为指定时区内该日的闭区间 [00:00:00, 23:59:59]。
func DayRange(date string, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("解析日期失败: %w", err)
	}
	return t, t.Add(24*time.Hour - time.Second), nil
}
