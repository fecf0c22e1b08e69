// Package service 实现短链接和聚合页的业务逻辑
package service

import (
	"context"
	"errors"
	"linkhub/internal/apperror"
	"linkhub/internal/cache"
	"linkhub/internal/events"
	"linkhub/internal/metrics"
	"linkhub/internal/shortcode"
	"linkhub/internal/store"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100

	clickWriteTimeout = 3 * time.Second
)

// Service 在启动时创建一次，所有请求共享
type Service struct {
	store     *store.Store
	keyspace  *shortcode.Keyspace
	cache     cache.LinkCache
	publisher events.ClickPublisher
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// New 创建服务，cache 和 publisher 可以为 nil
func New(st *store.Store, keyspace *shortcode.Keyspace, linkCache cache.LinkCache, publisher events.ClickPublisher, logger *zap.SugaredLogger) *Service {
	if linkCache == nil {
		linkCache = cache.NewLocalCache(time.Hour)
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		store:     st,
		keyspace:  keyspace,
		cache:     linkCache,
		publisher: publisher,
		logger:    logger.Named("service"),
		now:       time.Now,
	}
}

// Page 规范化分页参数: limit 默认 50、最大 100，offset 不小于 0
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CheckAvailability 查询短名在全局空间中是否可用
func (s *Service) CheckAvailability(ctx context.Context, name string) (shortcode.Availability, error) {
	verdict, err := s.keyspace.CheckAvailability(ctx, name)
	if err != nil {
		return verdict, apperror.Internal(err, "Failed to check availability")
	}
	return verdict, nil
}

// allocateName 返回自定义短名（校验通过时）或随机生成的短名
func (s *Service) allocateName(ctx context.Context, custom string) (string, *string, error) {
	custom = shortcode.Normalize(custom)
	if custom != "" {
		verdict, err := s.CheckAvailability(ctx, custom)
		if err != nil {
			return "", nil, err
		}
		if !verdict.Available {
			return "", nil, apperror.Conflict(verdict.Reason)
		}
		return custom, &custom, nil
	}

	name, err := s.keyspace.GenerateUniqueName(ctx)
	if err != nil {
		if errors.Is(err, shortcode.ErrGenerationExhausted) {
			metrics.NameGenerationExhausted.Inc()
			s.logger.Errorw("随机短名生成失败", "error", err)
		}
		return "", nil, apperror.Internal(err, "Unable to generate unique short name")
	}
	metrics.NamesGenerated.Inc()
	return name, nil, nil
}

// translateStoreError 把存储层错误映射为应用错误
func translateStoreError(err error, notFoundMessage, internalMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperror.NotFound(notFoundMessage)
	case errors.Is(err, store.ErrNameTaken):
		return apperror.Conflict(shortcode.ReasonTaken)
	default:
		return apperror.Internal(err, internalMessage)
	}
}
