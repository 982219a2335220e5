package repository

import (
	"context"
	"fmt"

	"github.com/metronlab/metron/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户仓储
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save 幂等写入用户（uid 冲突视为成功）
func (r *UserRepository) Save(ctx context.Context, user *schema.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "uid"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("写入用户失败: %w", err)
	}
	return nil
}

// Exists 用户是否已在缓存中
func (r *UserRepository) Exists(ctx context.Context, uid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.User{}).Where("uid = ?", uid).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询用户失败: %w", err)
	}
	return count > 0, nil
}

// List 返回缓存中的全部用户
func (r *UserRepository) List(ctx context.Context) ([]schema.User, error) {
	var users []schema.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}
	return users, nil
}
