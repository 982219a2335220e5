package schema

import "time"

// CacheSchemaMeta 记录本地事件缓存的 schema 版本。缓存在每个成功批次后
// 会被清空重建，版本号保证跨程序升级时旧库不会被直接复用。
// 表内仅维护单行（ID=1）。
type CacheSchemaMeta struct {
	ID            int       `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (CacheSchemaMeta) TableName() string {
	return "cache_schema_meta"
}
