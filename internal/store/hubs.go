package store

import (
	"context"
	"linkhub/internal/model"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func orderedLinks(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

// CreateHub 占用短名并写入聚合页及其条目
func (s *Store) CreateHub(ctx context.Context, hub *model.Hub) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserve(tx, hub.HubName, model.KindHub); err != nil {
			return err
		}
		hub.IsActive = true
		return errors.Wrap(tx.Create(hub).Error, "create hub")
	})
}

// FindActiveHub 按名称查找活跃聚合页，条目按 order 升序
func (s *Store) FindActiveHub(ctx context.Context, hubName string) (*model.Hub, error) {
	var hub model.Hub
	err := s.db.WithContext(ctx).
		Preload("Links", orderedLinks).
		Where("hub_name = ? AND is_active = ?", hubName, true).
		First(&hub).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &hub, nil
}

func (s *Store) ListHubs(ctx context.Context, limit, offset int) ([]model.Hub, error) {
	var hubs []model.Hub
	err := s.db.WithContext(ctx).
		Preload("Links", orderedLinks).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&hubs).Error
	return hubs, errors.Wrap(err, "list hubs")
}

func (s *Store) IncrementHubClicks(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Model(&model.Hub{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"click_count": gorm.Expr("click_count + 1"),
			"updated_at":  time.Now(),
		}).Error
	return errors.Wrap(err, "increment hub clicks")
}

// IncrementHubLinkClicks 聚合页条目的点击数加一
func (s *Store) IncrementHubLinkClicks(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Model(&model.HubLink{}).Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
	return errors.Wrap(err, "increment hub link clicks")
}

// DeactivateHub 软停用聚合页并释放短名
func (s *Store) DeactivateHub(ctx context.Context, hubName string) (*model.Hub, error) {
	var hub model.Hub
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hub_name = ? AND is_active = ?", hubName, true).First(&hub).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&hub).Update("is_active", false).Error; err != nil {
			return errors.Wrap(err, "deactivate hub")
		}
		return release(tx, hub.HubName, model.KindHub)
	})
	if err != nil {
		return nil, err
	}
	return &hub, nil
}
