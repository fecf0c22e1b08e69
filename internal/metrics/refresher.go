package metrics

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Counter 返回当前活跃的链接和聚合页数量
type Counter interface {
	CountActive(ctx context.Context) (links, hubs int64, err error)
}

// Refresher 定时刷新活跃数量指标
type Refresher struct {
	cron    *cron.Cron
	counter Counter
	logger  *zap.SugaredLogger
}

func NewRefresher(counter Counter, logger *zap.SugaredLogger) *Refresher {
	return &Refresher{
		cron:    cron.New(),
		counter: counter,
		logger:  logger.Named("metrics_refresher"),
	}
}

// Start 立即刷新一次，之后按 schedule 周期执行
func (r *Refresher) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.Refresh); err != nil {
		return err
	}
	r.Refresh()
	r.cron.Start()
	return nil
}

func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	links, hubs, err := r.counter.CountActive(ctx)
	if err != nil {
		r.logger.Warnf("刷新活跃数量失败: %v", err)
		return
	}
	ActiveEntities.WithLabelValues("link").Set(float64(links))
	ActiveEntities.WithLabelValues("hub").Set(float64(hubs))
}
