// Package store 封装所有 gorm 查询。Store 在启动时创建一次，按引用传递。
package store

import (
	"context"
	stderrors "errors"
	"linkhub/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = stderrors.New("record not found")
	ErrNameTaken = stderrors.New("short name already reserved")
)

// Store 数据访问层
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 暴露底层连接，供迁移和测试使用
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping 检查数据库连通性
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return sqlDB.PingContext(ctx)
}

// IsNameTaken 短名是否被活跃的链接或聚合页占用
func (s *Store) IsNameTaken(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.NameReservation{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, errors.Wrapf(err, "check name %q", name)
	}
	return count > 0, nil
}

// reserve 在事务中占用短名，唯一索引冲突说明已被其他请求抢先
func reserve(tx *gorm.DB, name, kind string) error {
	err := tx.Create(&model.NameReservation{Name: name, Kind: kind}).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrNameTaken
	}
	return errors.Wrapf(err, "reserve name %q", name)
}

func release(tx *gorm.DB, name, kind string) error {
	err := tx.Where("name = ? AND kind = ?", name, kind).Delete(&model.NameReservation{}).Error
	return errors.Wrapf(err, "release name %q", name)
}

// CountActive 统计活跃链接和聚合页数量
func (s *Store) CountActive(ctx context.Context) (links, hubs int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&model.Link{}).Where("is_active = ?", true).Count(&links).Error; err != nil {
		return 0, 0, errors.Wrap(err, "count links")
	}
	if err = db.Model(&model.Hub{}).Where("is_active = ?", true).Count(&hubs).Error; err != nil {
		return 0, 0, errors.Wrap(err, "count hubs")
	}
	return links, hubs, nil
}

func notFound(err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
