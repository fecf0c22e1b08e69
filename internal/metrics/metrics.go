// Package metrics 定义 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Redirects 按结果统计的跳转次数: redirect / hub / not_found / gone
	Redirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkhub",
		Name:      "redirects_total",
		Help:      "Redirect dispatch outcomes.",
	}, []string{"result"})

	ClickRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkhub",
		Name:      "click_record_failures_total",
		Help:      "Click events that could not be stored or counted.",
	})

	NamesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkhub",
		Name:      "names_generated_total",
		Help:      "Random short names allocated.",
	})

	NameGenerationExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkhub",
		Name:      "name_generation_exhausted_total",
		Help:      "Requests that ran out of random name attempts.",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkhub",
		Name:      "link_cache_lookups_total",
		Help:      "Link cache lookups by outcome.",
	}, []string{"outcome"})

	ActiveEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "linkhub",
		Name:      "active_entities",
		Help:      "Active links and hubs, refreshed periodically.",
	}, []string{"kind"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "linkhub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
