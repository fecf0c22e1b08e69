package service

import (
	"context"
	"errors"
	"linkhub/internal/apperror"
	"linkhub/internal/cache"
	"linkhub/internal/events"
	"linkhub/internal/metrics"
	"linkhub/internal/model"
	"linkhub/internal/store"

	"github.com/samber/lo"
)

// Visit 访问者信息，全部可选
type Visit struct {
	IP        string
	UserAgent string
	Referrer  string
	Country   string
}

// Outcome 跳转分发的结果类型
type Outcome int

const (
	OutcomeRedirect Outcome = iota
	OutcomeHub
)

// Dispatch 跳转分发结果：链接给出目标地址，聚合页给出内容由前端渲染
type Dispatch struct {
	Outcome  Outcome
	Location string
	Hub      *model.Hub
}

// Resolve 先按链接查找，找不到再按聚合页查找。
// 过期返回 Gone 且不记录点击；点击记录失败只记日志，不影响跳转。
func (s *Service) Resolve(ctx context.Context, shortName string, visit Visit) (*Dispatch, error) {
	entry, err := s.lookupLink(ctx, shortName)
	switch {
	case err == nil:
		if entry.Expired(s.now()) {
			metrics.Redirects.WithLabelValues("gone").Inc()
			return nil, apperror.Gone("URL has expired")
		}
		s.recordClick(ctx, shortName, entry.ID, visit)
		metrics.Redirects.WithLabelValues("redirect").Inc()
		return &Dispatch{Outcome: OutcomeRedirect, Location: entry.OriginalURL}, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperror.Internal(err, "Internal server error")
	}

	hub, err := s.ViewHub(ctx, shortName)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeNotFound) {
			metrics.Redirects.WithLabelValues("not_found").Inc()
			return nil, apperror.NotFound("URL not found")
		}
		return nil, err
	}
	return &Dispatch{Outcome: OutcomeHub, Hub: hub}, nil
}

// lookupLink 优先读缓存，未命中时查库并回填
func (s *Service) lookupLink(ctx context.Context, shortName string) (cache.Entry, error) {
	if entry, ok := s.cache.Get(ctx, shortName); ok {
		metrics.CacheHits.WithLabelValues("hit").Inc()
		return entry, nil
	}
	metrics.CacheHits.WithLabelValues("miss").Inc()

	link, err := s.store.FindActiveLink(ctx, shortName)
	if err != nil {
		return cache.Entry{}, err
	}
	entry := cache.EntryFromLink(link)
	s.cache.Set(ctx, shortName, entry)
	return entry, nil
}

// recordClick 写入点击记录并累加计数，两次写入之间没有原子性保证
func (s *Service) recordClick(ctx context.Context, shortName string, linkID uint, visit Visit) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clickWriteTimeout)
	defer cancel()

	click := &model.Click{
		LinkID:    linkID,
		ClickedAt: s.now(),
		UserIP:    visit.IP,
		UserAgent: visit.UserAgent,
		Referrer:  visit.Referrer,
		Country:   visit.Country,
	}
	if err := s.store.RecordClick(ctx, click); err != nil {
		s.clickFailed(shortName, err)
		return
	}
	if err := s.store.IncrementLinkClicks(ctx, linkID); err != nil {
		s.clickFailed(shortName, err)
		return
	}

	event := events.ClickEvent{
		ShortName: shortName,
		LinkID:    linkID,
		ClickedAt: click.ClickedAt,
		Referrer:  visit.Referrer,
		Country:   visit.Country,
	}
	if err := s.publisher.PublishClick(ctx, event); err != nil {
		s.logger.Warnw("推送点击事件失败", "shortName", shortName, "error", err)
	}
}

func (s *Service) clickFailed(shortName string, err error) {
	metrics.ClickRecordFailures.Inc()
	s.logger.Warnw("记录点击失败（忽略）", "shortName", shortName, "error", err)
}

// ViewHub 访问聚合页：过期返回 Gone，否则累加访问数并返回内容
func (s *Service) ViewHub(ctx context.Context, hubName string) (*model.Hub, error) {
	hub, err := s.GetHub(ctx, hubName)
	if err != nil {
		return nil, err
	}
	if hub.Expired(s.now()) {
		metrics.Redirects.WithLabelValues("gone").Inc()
		return nil, apperror.Gone("Hub has expired")
	}

	if err := s.store.IncrementHubClicks(context.WithoutCancel(ctx), hub.ID); err != nil {
		s.clickFailed(hubName, err)
	} else {
		hub.ClickCount++
	}
	metrics.Redirects.WithLabelValues("hub").Inc()
	return hub, nil
}

// FollowHubLink 跳转到聚合页中指定 order 的条目，并累加该条目的点击数
func (s *Service) FollowHubLink(ctx context.Context, hubName string, order int) (string, error) {
	hub, err := s.GetHub(ctx, hubName)
	if err != nil {
		return "", err
	}
	if hub.Expired(s.now()) {
		return "", apperror.Gone("Hub has expired")
	}

	entry, ok := lo.Find(hub.Links, func(l model.HubLink) bool { return l.Order == order })
	if !ok {
		return "", apperror.NotFound("Hub link not found")
	}
	if err := s.store.IncrementHubLinkClicks(context.WithoutCancel(ctx), entry.ID); err != nil {
		s.clickFailed(hubName, err)
	}
	metrics.Redirects.WithLabelValues("redirect").Inc()
	return entry.URL, nil
}
