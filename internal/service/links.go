package service

import (
	"context"
	"linkhub/internal/apperror"
	"linkhub/internal/model"
	"time"
)

// CreateLinkInput 创建短链接的参数
type CreateLinkInput struct {
	OriginalURL string
	CustomName  string
	ExpiresAt   *time.Time
	UserIP      string
	UserAgent   string
}

// CreateLink 分配短名并保存链接
func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*model.Link, error) {
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, apperror.InvalidInput("Invalid input", apperror.FieldError{
			Field: "expiresAt", Message: "must be in the future",
		})
	}

	name, custom, err := s.allocateName(ctx, in.CustomName)
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		ShortName:   name,
		OriginalURL: in.OriginalURL,
		CustomName:  custom,
		ExpiresAt:   in.ExpiresAt,
		UserIP:      in.UserIP,
		UserAgent:   in.UserAgent,
	}
	if err := s.store.CreateLink(ctx, link); err != nil {
		return nil, translateStoreError(err, "URL not found", "Failed to create short URL")
	}

	s.logger.Infow("创建短链接", "shortName", link.ShortName, "custom", custom != nil)
	return link, nil
}

// GetLink 按短名查找活跃链接
func (s *Service) GetLink(ctx context.Context, shortName string) (*model.Link, error) {
	link, err := s.store.FindActiveLink(ctx, shortName)
	if err != nil {
		return nil, translateStoreError(err, "URL not found", "Failed to fetch URL")
	}
	return link, nil
}

// ListLinks 分页列出活跃链接，limit 最大 100
func (s *Service) ListLinks(ctx context.Context, limit, offset int) ([]model.Link, error) {
	limit, offset = Page(limit, offset)
	links, err := s.store.ListLinks(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch URLs")
	}
	return links, nil
}

// DeactivateLink 软停用链接，释放短名并清除缓存
func (s *Service) DeactivateLink(ctx context.Context, shortName string) (*model.Link, error) {
	link, err := s.store.DeactivateLink(ctx, shortName)
	if err != nil {
		return nil, translateStoreError(err, "URL not found", "Failed to deactivate URL")
	}
	s.cache.Delete(ctx, shortName)
	link.IsActive = false

	s.logger.Infow("停用短链接", "shortName", shortName)
	return link, nil
}
