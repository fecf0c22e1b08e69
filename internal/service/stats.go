package service

import (
	"context"
	"linkhub/internal/apperror"
	"linkhub/internal/model"
	"time"

	"github.com/samber/lo"
)

const recentClicksLimit = 10

// LinkStats 链接的点击统计
type LinkStats struct {
	TotalClicks     int64         `json:"totalClicks"`
	ClicksToday     int64         `json:"clicksToday"`
	ClicksThisWeek  int64         `json:"clicksThisWeek"`
	ClicksThisMonth int64         `json:"clicksThisMonth"`
	RecentClicks    []model.Click `json:"recentClicks"`
}

// HubLinkStat 聚合页单个条目的点击数
type HubLinkStat struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Order  int    `json:"order"`
	Clicks int64  `json:"clicks"`
}

// HubStats 聚合页统计
type HubStats struct {
	TotalClicks int64         `json:"totalClicks"`
	LinkStats   []HubLinkStat `json:"linkStats"`
}

// statWindows 返回今天零点、滚动 7 天、本月 1 日的起点
func statWindows(now time.Time) (today, week, month time.Time) {
	y, m, d := now.Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	week = now.Add(-7 * 24 * time.Hour)
	month = time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return today, week, month
}

// LinkStats 统计链接的点击数据
func (s *Service) LinkStats(ctx context.Context, shortName string) (*model.Link, *LinkStats, error) {
	link, err := s.GetLink(ctx, shortName)
	if err != nil {
		return nil, nil, err
	}

	today, week, month := statWindows(s.now())
	stats := &LinkStats{}
	counts := []struct {
		since time.Time
		dst   *int64
	}{
		{time.Time{}, &stats.TotalClicks},
		{today, &stats.ClicksToday},
		{week, &stats.ClicksThisWeek},
		{month, &stats.ClicksThisMonth},
	}
	for _, c := range counts {
		n, err := s.store.CountClicks(ctx, link.ID, c.since)
		if err != nil {
			return nil, nil, apperror.Internal(err, "Failed to fetch stats")
		}
		*c.dst = n
	}

	stats.RecentClicks, err = s.store.RecentClicks(ctx, link.ID, recentClicksLimit)
	if err != nil {
		return nil, nil, apperror.Internal(err, "Failed to fetch stats")
	}
	if stats.RecentClicks == nil {
		stats.RecentClicks = []model.Click{}
	}
	return link, stats, nil
}

// HubStats 聚合页的总访问数和各条目点击数
func (s *Service) HubStats(ctx context.Context, hubName string) (*model.Hub, *HubStats, error) {
	hub, err := s.GetHub(ctx, hubName)
	if err != nil {
		return nil, nil, err
	}
	return hub, &HubStats{
		TotalClicks: hub.ClickCount,
		LinkStats: lo.Map(hub.Links, func(l model.HubLink, _ int) HubLinkStat {
			return HubLinkStat{Title: l.Title, URL: l.URL, Order: l.Order, Clicks: l.ClickCount}
		}),
	}, nil
}
