package repository

import (
	"context"
	"testing"
	"time"

	"github.com/metronlab/metron/internal/schema"
	"github.com/metronlab/metron/internal/testutil"
)

func TestGPSRepositorySaveIdempotent(t *testing.T) {
	repo := NewGPSRepository(testutil.OpenCacheDB(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	fix := schema.GPSFix{EventID: "e1", UserUID: "u1", Latitude: 45, Longitude: 7, Timestamp: at}
	if err := repo.Save(ctx, &fix); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// 同一 event_id 重复上报不报错也不产生新行
	dup := schema.GPSFix{EventID: "e1", UserUID: "u1", Latitude: 46, Longitude: 8, Timestamp: at}
	if err := repo.Save(ctx, &dup); err != nil {
		t.Fatalf("重复 Save: %v", err)
	}

	fixes, err := repo.ListRange(ctx, "u1", at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(fixes) != 1 || fixes[0].Latitude != 45 {
		t.Fatalf("fixes=%+v", fixes)
	}
}

func TestGPSRepositoryBatchSaveAndRange(t *testing.T) {
	repo := NewGPSRepository(testutil.OpenCacheDB(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	batch := []schema.GPSFix{
		{EventID: "e1", UserUID: "u1", Timestamp: at.Add(2 * time.Minute)},
		{EventID: "e2", UserUID: "u1", Timestamp: at},
		{EventID: "e3", UserUID: "u2", Timestamp: at},        // 其他用户
		{EventID: "e4", UserUID: "u1", Timestamp: at.Add(2 * time.Hour)}, // 窗口外
	}
	if err := repo.BatchSave(ctx, batch); err != nil {
		t.Fatalf("BatchSave: %v", err)
	}
	if err := repo.BatchSave(ctx, batch); err != nil {
		t.Fatalf("重复 BatchSave: %v", err)
	}

	fixes, err := repo.ListRange(ctx, "u1", at, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(fixes) != 2 {
		t.Fatalf("fixes=%d, 期望 2", len(fixes))
	}
	// 按时间升序
	if fixes[0].EventID != "e2" || fixes[1].EventID != "e1" {
		t.Fatalf("排序错误: %+v", fixes)
	}
}
