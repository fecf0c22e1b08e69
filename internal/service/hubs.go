package service

import (
	"context"
	"linkhub/internal/apperror"
	"linkhub/internal/model"
	"sort"
	"time"

	"github.com/samber/lo"
)

// HubLinkInput 聚合页条目
type HubLinkInput struct {
	Title string
	URL   string
	Order int
}

// CreateHubInput 创建聚合页的参数
type CreateHubInput struct {
	Title       string
	Description string
	Links       []HubLinkInput
	CustomName  string
	ExpiresAt   *time.Time
	UserIP      string
	UserAgent   string
}

// CreateHub 分配短名并保存聚合页，条目按 order 排序后写入
func (s *Service) CreateHub(ctx context.Context, in CreateHubInput) (*model.Hub, error) {
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, apperror.InvalidInput("Invalid input", apperror.FieldError{
			Field: "expiresAt", Message: "must be in the future",
		})
	}

	name, custom, err := s.allocateName(ctx, in.CustomName)
	if err != nil {
		return nil, err
	}

	links := lo.Map(in.Links, func(l HubLinkInput, _ int) model.HubLink {
		return model.HubLink{Title: l.Title, URL: l.URL, Order: l.Order}
	})
	sort.SliceStable(links, func(i, j int) bool { return links[i].Order < links[j].Order })

	hub := &model.Hub{
		HubName:     name,
		Title:       in.Title,
		Description: in.Description,
		Links:       links,
		CustomName:  custom,
		ExpiresAt:   in.ExpiresAt,
		UserIP:      in.UserIP,
		UserAgent:   in.UserAgent,
	}
	if err := s.store.CreateHub(ctx, hub); err != nil {
		return nil, translateStoreError(err, "Hub not found", "Failed to create hub")
	}

	s.logger.Infow("创建聚合页", "hubName", hub.HubName, "links", len(links))
	return hub, nil
}

// GetHub 按名称查找活跃聚合页，不计入访问
func (s *Service) GetHub(ctx context.Context, hubName string) (*model.Hub, error) {
	hub, err := s.store.FindActiveHub(ctx, hubName)
	if err != nil {
		return nil, translateStoreError(err, "Hub not found", "Failed to fetch hub")
	}
	return hub, nil
}

func (s *Service) ListHubs(ctx context.Context, limit, offset int) ([]model.Hub, error) {
	limit, offset = Page(limit, offset)
	hubs, err := s.store.ListHubs(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to fetch hubs")
	}
	return hubs, nil
}

func (s *Service) DeactivateHub(ctx context.Context, hubName string) (*model.Hub, error) {
	hub, err := s.store.DeactivateHub(ctx, hubName)
	if err != nil {
		return nil, translateStoreError(err, "Hub not found", "Failed to deactivate hub")
	}
	hub.IsActive = false

	s.logger.Infow("停用聚合页", "hubName", hubName)
	return hub, nil
}
