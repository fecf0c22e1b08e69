package service

import (
	"context"
	"errors"
	"linkhub/internal/apperror"
	"linkhub/internal/events"
	"linkhub/internal/model"
	"linkhub/internal/shortcode"
	"linkhub/internal/store"
	"linkhub/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New(testutil.NewDB(t))
	logger := zap.NewNop().Sugar()
	ks, err := shortcode.NewKeyspace(st, shortcode.Options{}, logger)
	require.NoError(t, err)
	svc := New(st, ks, nil, nil, logger)
	svc.now = func() time.Time { return fixedNow }
	return svc, st
}

func TestPage(t *testing.T) {
	tests := []struct {
		limit, offset, wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-5, -1, 50, 0},
		{20, 40, 20, 40},
		{100, 0, 100, 0},
		{1000, 0, 100, 0},
	}
	for _, tt := range tests {
		limit, offset := Page(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOffset, offset)
	}
}

func TestCreateLink_Generated(t *testing.T) {
	svc, _ := newTestService(t)

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z0-9_-]{8}$`, link.ShortName)
	assert.Nil(t, link.CustomName)
	assert.Zero(t, link.ClickCount)
	assert.True(t, link.IsActive)
}

func TestCreateLink_CustomNameTrimmedAndConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com", CustomName: "  promo  "})
	require.NoError(t, err)
	assert.Equal(t, "promo", link.ShortName)
	require.NotNil(t, link.CustomName)
	assert.Equal(t, "promo", *link.CustomName)

	_, err = svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://other.example", CustomName: "promo"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	assert.Equal(t, shortcode.ReasonTaken, apperror.From(err).Message)

	_, err = svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://other.example", CustomName: "Admin"})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	assert.Equal(t, shortcode.ReasonReserved, apperror.From(err).Message)
}

func TestCreateLink_PastExpiryRejected(t *testing.T) {
	svc, _ := newTestService(t)
	past := fixedNow.Add(-time.Minute)

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "https://example.com", ExpiresAt: &past})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestLinkAndHubNeverShareName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHub(ctx, CreateHubInput{
		Title:      "My hub",
		CustomName: "together",
		Links:      []HubLinkInput{{Title: "a", URL: "https://a.example", Order: 0}},
	})
	require.NoError(t, err)

	verdict, err := svc.CheckAvailability(ctx, "together")
	require.NoError(t, err)
	assert.False(t, verdict.Available)

	_, err = svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com", CustomName: "together"})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	// 停用后名称释放
	_, err = svc.DeactivateHub(ctx, "together")
	require.NoError(t, err)
	link, err := svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com", CustomName: "together"})
	require.NoError(t, err)
	assert.Equal(t, "together", link.ShortName)
}

func TestResolve_RedirectRecordsClick(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	d, err := svc.Resolve(ctx, link.ShortName, Visit{IP: "10.0.0.1", Referrer: "https://ref.example"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedirect, d.Outcome)
	assert.Equal(t, "https://example.com", d.Location)

	// 第二次走缓存
	_, err = svc.Resolve(ctx, link.ShortName, Visit{})
	require.NoError(t, err)

	got, err := svc.GetLink(ctx, link.ShortName)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ClickCount)

	_, stats, err := svc.LinkStats(ctx, link.ShortName)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalClicks)
	require.Len(t, stats.RecentClicks, 2)
	assert.Equal(t, "10.0.0.1", stats.RecentClicks[1].UserIP)
}

func TestResolve_ExpiredLinkIsGoneWithoutClick(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	expired := fixedNow.Add(-time.Hour)
	require.NoError(t, st.CreateLink(ctx, &model.Link{ShortName: "old-link", OriginalURL: "https://example.com", ExpiresAt: &expired}))

	for i := 0; i < 2; i++ {
		_, err := svc.Resolve(ctx, "old-link", Visit{})
		assert.True(t, apperror.HasCode(err, apperror.CodeGone))
	}

	got, err := svc.GetLink(ctx, "old-link")
	require.NoError(t, err)
	assert.Zero(t, got.ClickCount)

	total, err := st.CountClicks(ctx, got.ID, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestResolve_ClickWriteFailureDoesNotBlockRedirect(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	// 点击表不可写
	require.NoError(t, st.DB().Migrator().DropTable(&model.Click{}))

	d, err := svc.Resolve(ctx, link.ShortName, Visit{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedirect, d.Outcome)
	assert.Equal(t, "https://example.com", d.Location)

	got, err := svc.GetLink(ctx, link.ShortName)
	require.NoError(t, err)
	assert.Zero(t, got.ClickCount)
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) PublishClick(context.Context, events.ClickEvent) error {
	p.calls++
	return errors.New("nats: connection closed")
}

func (p *failingPublisher) Close() {}

func TestResolve_PublishFailureDoesNotBlockRedirect(t *testing.T) {
	svc, _ := newTestService(t)
	publisher := &failingPublisher{}
	svc.publisher = publisher
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	d, err := svc.Resolve(ctx, link.ShortName, Visit{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", d.Location)
	assert.Equal(t, 1, publisher.calls)

	got, err := svc.GetLink(ctx, link.ShortName)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ClickCount)
}

func TestResolve_FallsBackToHub(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHub(ctx, CreateHubInput{
		Title:      "Socials",
		CustomName: "socials",
		Links: []HubLinkInput{
			{Title: "second", URL: "https://b.example", Order: 5},
			{Title: "first", URL: "https://a.example", Order: 1},
		},
	})
	require.NoError(t, err)

	d, err := svc.Resolve(ctx, "socials", Visit{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeHub, d.Outcome)
	assert.Equal(t, "Socials", d.Hub.Title)
	assert.Equal(t, int64(1), d.Hub.ClickCount)
	require.Len(t, d.Hub.Links, 2)
	assert.Equal(t, "first", d.Hub.Links[0].Title)

	_, err = svc.Resolve(ctx, "missing", Visit{})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestViewHub_Expired(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	expired := fixedNow.Add(-time.Second)
	hub := &model.Hub{HubName: "gone-hub", Title: "x", ExpiresAt: &expired,
		Links: []model.HubLink{{Title: "a", URL: "https://a.example"}}}
	require.NoError(t, st.CreateHub(ctx, hub))

	_, err := svc.ViewHub(ctx, "gone-hub")
	assert.True(t, apperror.HasCode(err, apperror.CodeGone))

	_, err = svc.FollowHubLink(ctx, "gone-hub", 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeGone))
}

func TestFollowHubLink_TracksPerLinkClicks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHub(ctx, CreateHubInput{
		Title:      "Links",
		CustomName: "mylinks",
		Links: []HubLinkInput{
			{Title: "blog", URL: "https://blog.example", Order: 0},
			{Title: "shop", URL: "https://shop.example", Order: 1},
		},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		url, err := svc.FollowHubLink(ctx, "mylinks", 1)
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example", url)
	}
	_, err = svc.FollowHubLink(ctx, "mylinks", 9)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

	_, err = svc.ViewHub(ctx, "mylinks")
	require.NoError(t, err)

	_, stats, err := svc.HubStats(ctx, "mylinks")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalClicks)
	require.Len(t, stats.LinkStats, 2)
	assert.Equal(t, int64(0), stats.LinkStats[0].Clicks)
	assert.Equal(t, int64(3), stats.LinkStats[1].Clicks)
}

func TestLinkStats_Windows(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com", CustomName: "stats"})
	require.NoError(t, err)

	times := []time.Time{
		fixedNow.Add(-time.Hour),                      // 今天
		time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), // 本周、本月
		time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC),  // 本月
		time.Date(2026, 9, 28, 9, 0, 0, 0, time.UTC),  // 更早
		time.Date(2026, 10, 18, 0, 0, 0, 1, time.UTC), // 今天零点之后
	}
	for _, ts := range times {
		require.NoError(t, st.RecordClick(ctx, &model.Click{LinkID: link.ID, ClickedAt: ts}))
	}

	_, stats, err := svc.LinkStats(ctx, "stats")
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalClicks)
	assert.Equal(t, int64(2), stats.ClicksToday)
	assert.Equal(t, int64(3), stats.ClicksThisWeek)
	assert.Equal(t, int64(4), stats.ClicksThisMonth)
	require.Len(t, stats.RecentClicks, 5)
	assert.True(t, stats.RecentClicks[0].ClickedAt.Equal(fixedNow.Add(-time.Hour)))
}

func TestListLinks_CappedAt100(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		name := "bulk" + string(rune('a'+i/26)) + string(rune('a'+i%26))
		require.NoError(t, st.CreateLink(ctx, &model.Link{ShortName: name, OriginalURL: "https://example.com"}))
	}

	links, err := svc.ListLinks(ctx, 500, 0)
	require.NoError(t, err)
	assert.Len(t, links, 100)

	links, err = svc.ListLinks(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, links, DefaultPageSize)
}

func TestDeactivateLink_EvictsCache(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, CreateLinkInput{OriginalURL: "https://example.com", CustomName: "cached"})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, link.ShortName, Visit{})
	require.NoError(t, err)

	_, err = svc.DeactivateLink(ctx, "cached")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "cached", Visit{})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

	_, err = svc.DeactivateLink(ctx, "cached")
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}
