package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

// OpenCacheDB 打开内存 SQLite 并迁移本地缓存的事件表
func OpenCacheDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := openMemory(t)
	if err := db.AutoMigrate(
		&schema.User{},
		&schema.GPSFix{},
		&schema.MotionSample{},
		&schema.MotionAppUsage{},
		&schema.ScreenSession{},
		&schema.UnlockEvent{},
		&schema.ActivityEvent{},
		&schema.CallRecord{},
		&schema.DropEvent{},
		&schema.LowLightInterval{},
		&schema.TypingSession{},
	); err != nil {
		t.Fatalf("migrate cache db: %v", err)
	}
	return db
}

// OpenStoreDB 打开内存 SQLite 并迁移分析结果表
func OpenStoreDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := openMemory(t)
	if err := db.AutoMigrate(
		&schema.User{},
		&schema.DailyAnalysis{},
		&schema.SleepAnalysis{},
		&schema.SleepZScores{},
		&schema.InteractionAnalysis{},
		&schema.CircadianScreenTime{},
		&schema.AppUsage{},
		&schema.InteractionZScores{},
		&schema.ActivityAnalysis{},
		&schema.ActivityDaySection{},
		&schema.ActivityZScores{},
		&schema.CallAnalysis{},
		&schema.CallZScores{},
		&schema.GPSAnalysis{},
		&schema.GPSKeyLocation{},
		&schema.GPSTransition{},
		&schema.GPSSpatialFeatures{},
		&schema.GPSZScores{},
		&schema.BaselineMetric{},
		&schema.TypingSessionResult{},
		&schema.TypingMetricValue{},
		&schema.TypingDailyStats{},
	); err != nil {
		t.Fatalf("migrate store db: %v", err)
	}
	return db
}
