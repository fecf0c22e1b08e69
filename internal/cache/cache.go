// Package cache 缓存重定向所需的链接信息
package cache

import (
	"context"
	"encoding/json"
	"linkhub/internal/model"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "shortlink:"

// Entry 重定向时需要的最少字段
type Entry struct {
	ID          uint       `json:"id"`
	OriginalURL string     `json:"originalUrl"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// EntryFromLink 从链接模型构造缓存条目
func EntryFromLink(link *model.Link) Entry {
	return Entry{ID: link.ID, OriginalURL: link.OriginalURL, ExpiresAt: link.ExpiresAt}
}

// Expired 判断缓存的链接是否已过期
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// LinkCache 只缓存活跃链接，停用时必须删除
type LinkCache interface {
	Get(ctx context.Context, shortName string) (Entry, bool)
	Set(ctx context.Context, shortName string, entry Entry)
	Delete(ctx context.Context, shortName string)
}

// RedisCache 基于 Redis 的实现，出错时视为未命中
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger.Named("link_cache")}
}

func (c *RedisCache) Get(ctx context.Context, shortName string) (Entry, bool) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	val, err := c.client.Get(ctx, keyPrefix+shortName).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnf("读取缓存失败: %v", err)
		}
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

func (c *RedisCache) Set(ctx context.Context, shortName string, entry Entry) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+shortName, data, c.ttl).Err(); err != nil {
		c.logger.Warnf("写入缓存失败: %v", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, shortName string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, keyPrefix+shortName).Err(); err != nil {
		c.logger.Warnf("删除缓存失败: %v", err)
	}
}

// LocalCache 未配置 Redis 时使用的进程内缓存
type LocalCache struct {
	items *gocache.Cache
}

func NewLocalCache(ttl time.Duration) *LocalCache {
	return &LocalCache{items: gocache.New(ttl, 2*ttl)}
}

func (c *LocalCache) Get(_ context.Context, shortName string) (Entry, bool) {
	v, ok := c.items.Get(shortName)
	if !ok {
		return Entry{}, false
	}
	entry, ok := v.(Entry)
	return entry, ok
}

func (c *LocalCache) Set(_ context.Context, shortName string, entry Entry) {
	c.items.SetDefault(shortName, entry)
}

func (c *LocalCache) Delete(_ context.Context, shortName string) {
	c.items.Delete(shortName)
}
