package store

import (
	"context"
	"linkhub/internal/model"
	"time"

	"github.com/pkg/errors"
)

// RecordClick 追加一条点击记录
func (s *Store) RecordClick(ctx context.Context, click *model.Click) error {
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	return errors.Wrap(s.db.WithContext(ctx).Create(click).Error, "record click")
}

// CountClicks 统计 since 之后的点击数，since 为零值时统计全部
func (s *Store) CountClicks(ctx context.Context, linkID uint, since time.Time) (int64, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&model.Click{}).Where("link_id = ?", linkID)
	if !since.IsZero() {
		q = q.Where("clicked_at >= ?", since)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count clicks")
	}
	return count, nil
}

// RecentClicks 最近的点击记录，新的在前
func (s *Store) RecentClicks(ctx context.Context, linkID uint, limit int) ([]model.Click, error) {
	var clicks []model.Click
	err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("clicked_at DESC, id DESC").
		Limit(limit).
		Find(&clicks).Error
	return clicks, errors.Wrap(err, "recent clicks")
}
