package store

import (
	"context"
	"linkhub/internal/model"
	"linkhub/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	return New(testutil.NewDB(t))
}

func TestCreateLink_ReservesName(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	link := &model.Link{ShortName: "docs", OriginalURL: "https://example.com"}
	require.NoError(t, s.CreateLink(ctx, link))
	assert.NotZero(t, link.ID)
	assert.True(t, link.IsActive)

	taken, err := s.IsNameTaken(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, taken)

	found, err := s.FindActiveLink(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", found.OriginalURL)
	assert.Zero(t, found.ClickCount)
}

func TestSharedKeyspace_LinkBlocksHub(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateLink(ctx, &model.Link{ShortName: "shared", OriginalURL: "https://a.example"}))

	hub := &model.Hub{HubName: "shared", Title: "t", Links: []model.HubLink{{Title: "x", URL: "https://x.example"}}}
	err := s.CreateHub(ctx, hub)
	assert.ErrorIs(t, err, ErrNameTaken)

	// 事务回滚，聚合页不应写入
	_, err = s.FindActiveHub(ctx, "shared")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateLink_ReleasesName(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateLink(ctx, &model.Link{ShortName: "temp", OriginalURL: "https://a.example"}))

	_, err := s.DeactivateLink(ctx, "temp")
	require.NoError(t, err)

	_, err = s.FindActiveLink(ctx, "temp")
	assert.ErrorIs(t, err, ErrNotFound)

	taken, err := s.IsNameTaken(ctx, "temp")
	require.NoError(t, err)
	assert.False(t, taken)

	// 释放后另一个命名空间可以使用
	hub := &model.Hub{HubName: "temp", Title: "t", Links: []model.HubLink{{Title: "x", URL: "https://x.example"}}}
	require.NoError(t, s.CreateHub(ctx, hub))

	_, err = s.DeactivateLink(ctx, "temp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindActiveHub_LinksOrdered(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	hub := &model.Hub{HubName: "mine", Title: "My links", Links: []model.HubLink{
		{Title: "third", URL: "https://c.example", Order: 2},
		{Title: "first", URL: "https://a.example", Order: 0},
		{Title: "second", URL: "https://b.example", Order: 1},
	}}
	require.NoError(t, s.CreateHub(ctx, hub))

	found, err := s.FindActiveHub(ctx, "mine")
	require.NoError(t, err)
	require.Len(t, found.Links, 3)
	assert.Equal(t, "first", found.Links[0].Title)
	assert.Equal(t, "second", found.Links[1].Title)
	assert.Equal(t, "third", found.Links[2].Title)

	require.NoError(t, s.IncrementHubLinkClicks(ctx, found.Links[1].ID))
	require.NoError(t, s.IncrementHubClicks(ctx, found.ID))

	found, err = s.FindActiveHub(ctx, "mine")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ClickCount)
	assert.Equal(t, int64(1), found.Links[1].ClickCount)
	assert.Zero(t, found.Links[0].ClickCount)
}

func TestListLinks_PaginationAndActiveOnly(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, name := range []string{"aaa", "bbb", "ccc", "ddd"} {
		require.NoError(t, s.CreateLink(ctx, &model.Link{ShortName: name, OriginalURL: "https://" + name + ".example"}))
	}
	_, err := s.DeactivateLink(ctx, "bbb")
	require.NoError(t, err)

	links, err := s.ListLinks(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "ddd", links[0].ShortName)
	assert.Equal(t, "ccc", links[1].ShortName)

	links, err = s.ListLinks(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "aaa", links[0].ShortName)

	active, hubs, err := s.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), active)
	assert.Zero(t, hubs)
}

func TestClicks_CountAndRecent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	link := &model.Link{ShortName: "clicky", OriginalURL: "https://a.example"}
	require.NoError(t, s.CreateLink(ctx, link))

	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		click := &model.Click{LinkID: link.ID, ClickedAt: base.Add(-time.Duration(i) * time.Hour)}
		require.NoError(t, s.RecordClick(ctx, click))
	}
	require.NoError(t, s.IncrementLinkClicks(ctx, link.ID))

	total, err := s.CountClicks(ctx, link.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)

	recent, err := s.CountClicks(ctx, link.ID, base.Add(-150*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), recent)

	latest, err := s.RecentClicks(ctx, link.ID, 10)
	require.NoError(t, err)
	require.Len(t, latest, 10)
	assert.True(t, latest[0].ClickedAt.Equal(base))
	assert.True(t, latest[9].ClickedAt.Equal(base.Add(-9*time.Hour)))

	found, err := s.FindActiveLink(ctx, "clicky")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ClickCount)
}

func TestPing(t *testing.T) {
	assert.NoError(t, newStore(t).Ping(context.Background()))
}
