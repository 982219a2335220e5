package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动
	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CacheDB 本地事件缓存（每轮批次分析开始时整库重建）
type CacheDB struct {
	DB             *gorm.DB
	SafeMode       bool
	SchemaVersion  int
	MigrationError string

	mu sync.Mutex // 同一缓存同一时刻只允许一个批次
}

// OpenCache 打开本地缓存数据库
func OpenCache(dbPath string) (*CacheDB, error) {
	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置 SQLite WAL 模式
	if err := configureDB(db); err != nil {
		return nil, fmt.Errorf("配置数据库失败: %w", err)
	}

	d := &CacheDB{DB: db}
	if err := migrateWithVersion(db, d); err != nil {
		// 迁移失败进入安全模式，允许进程启动并导出诊断信息
		d.SafeMode = true
		d.MigrationError = err.Error()
		slog.Error("数据库迁移失败，进入安全模式", "error", err)
	}

	slog.Info("本地缓存初始化成功", "path", dbPath)

	return d, nil
}

// configureDB 配置 SQLite 性能参数
func configureDB(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",    // 启用 WAL 模式，支持并发读写
		"PRAGMA synchronous=NORMAL",  // 平衡性能与安全
		"PRAGMA cache_size=10000",    // 增加缓存 (~40MB)
		"PRAGMA temp_store=MEMORY",   // 临时表使用内存
		"PRAGMA mmap_size=268435456", // 启用内存映射 (256MB)
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("执行 %s 失败: %w", pragma, err)
		}
	}

	return nil
}

// CacheTables 本地缓存的全部事件表
func CacheTables() []any {
	return []any{
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
	}
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	tables := append([]any{&schema.CacheSchemaMeta{}}, CacheTables()...)
	return db.AutoMigrate(tables...)
}

const latestSchemaVersion = 1

func migrateWithVersion(db *gorm.DB, out *CacheDB) error {
	if db == nil {
		return fmt.Errorf("db 不能为空")
	}
	if out == nil {
		return fmt.Errorf("out 不能为空")
	}

	// 先确保 schema_meta 存在（即使后续迁移失败，也能记录状态）
	if err := db.AutoMigrate(&schema.CacheSchemaMeta{}); err != nil {
		return fmt.Errorf("创建 schema_meta 失败: %w", err)
	}

	var meta schema.CacheSchemaMeta
	err := db.First(&meta, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			meta = schema.CacheSchemaMeta{ID: 1, SchemaVersion: 0}
			if err := db.Create(&meta).Error; err != nil {
				return fmt.Errorf("初始化 schema_meta 失败: %w", err)
			}
		} else {
			return fmt.Errorf("读取 schema_meta 失败: %w", err)
		}
	}

	cur := meta.SchemaVersion
	out.SchemaVersion = cur

	if cur > latestSchemaVersion {
		return fmt.Errorf("数据库 schema_version=%d 高于当前程序支持的版本=%d", cur, latestSchemaVersion)
	}
	if cur == latestSchemaVersion {
		return nil
	}

	// 迁移策略保持最小化：仍基于 AutoMigrate，但以 schema_version 作为升级门闸
	if err := autoMigrate(db); err != nil {
		return fmt.Errorf("迁移数据库失败: %w", err)
	}

	meta.SchemaVersion = latestSchemaVersion
	if err := db.Save(&meta).Error; err != nil {
		return fmt.Errorf("写入 schema_meta 失败: %w", err)
	}
	out.SchemaVersion = latestSchemaVersion
	return nil
}

// ErrCacheBusy 已有批次独占缓存
var ErrCacheBusy = errors.New("缓存正被其他批次占用")

// Acquire 独占缓存。已有批次持有时立即拒绝，不排队等待。
func (d *CacheDB) Acquire() (func(), error) {
	if !d.mu.TryLock() {
		return nil, ErrCacheBusy
	}
	return d.mu.Unlock, nil
}

// Reset 整库重建：删除所有事件表后重新迁移。
// 每日批次的第一步，保证不残留前一天的数据。
func (d *CacheDB) Reset() error {
	if d.SafeMode {
		return fmt.Errorf("缓存处于安全模式，拒绝重建: %s", d.MigrationError)
	}

	for _, table := range CacheTables() {
		if err := d.DB.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("删除事件表失败: %w", err)
		}
	}
	if err := d.DB.AutoMigrate(CacheTables()...); err != nil {
		return fmt.Errorf("重建事件表失败: %w", err)
	}

	slog.Info("本地缓存已重建")
	return nil
}

// Close 关闭数据库连接
func (d *CacheDB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
