package store

import (
	"context"
	"linkhub/internal/model"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateLink 占用短名并写入链接，两步在同一事务中
func (s *Store) CreateLink(ctx context.Context, link *model.Link) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserve(tx, link.ShortName, model.KindLink); err != nil {
			return err
		}
		link.IsActive = true
		return errors.Wrap(tx.Create(link).Error, "create link")
	})
}

// FindActiveLink 按短名查找活跃链接
func (s *Store) FindActiveLink(ctx context.Context, shortName string) (*model.Link, error) {
	var link model.Link
	err := s.db.WithContext(ctx).
		Where("short_name = ? AND is_active = ?", shortName, true).
		First(&link).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// ListLinks 按创建时间倒序分页
func (s *Store) ListLinks(ctx context.Context, limit, offset int) ([]model.Link, error) {
	var links []model.Link
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&links).Error
	return links, errors.Wrap(err, "list links")
}

// IncrementLinkClicks 点击数加一
func (s *Store) IncrementLinkClicks(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Model(&model.Link{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"click_count": gorm.Expr("click_count + 1"),
			"updated_at":  time.Now(),
		}).Error
	return errors.Wrap(err, "increment link clicks")
}

// DeactivateLink 软停用链接并释放短名
func (s *Store) DeactivateLink(ctx context.Context, shortName string) (*model.Link, error) {
	var link model.Link
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("short_name = ? AND is_active = ?", shortName, true).First(&link).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&link).Update("is_active", false).Error; err != nil {
			return errors.Wrap(err, "deactivate link")
		}
		return release(tx, link.ShortName, model.KindLink)
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}
