package middleware

import (
	"context"
	"linkhub/internal/config"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// windowCounter 固定窗口计数：返回窗口内的请求数和窗口剩余时间
type windowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// redisCounter 多实例共享的计数器，窗口从第一次请求开始
type redisCounter struct {
	client *redis.Client
}

func (r *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// 键没有过期时间（上次 EXPIRE 失败），补上
		r.client.Expire(ctx, key, window)
		ttl = window
	}
	return count, ttl, nil
}

// localCounter 单实例的进程内计数器
type localCounter struct {
	windows *gocache.Cache
}

func newLocalCounter() *localCounter {
	return &localCounter{windows: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (l *localCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	// 已存在时 Add 返回错误，忽略即可
	_ = l.windows.Add(key, int64(0), window)
	count, err := l.windows.IncrementInt64(key, 1)
	if err != nil {
		// 窗口恰好过期，重新开始
		l.windows.Set(key, int64(1), window)
		return 1, window, nil
	}
	_, expiresAt, _ := l.windows.GetWithExpiration(key)
	return count, time.Until(expiresAt), nil
}

// RateLimit 按客户端 IP 的固定窗口限流，配置了 global_rps 时额外启用全局令牌桶
func RateLimit(redisClient *redis.Client, limitConfig *config.Limit, logger *zap.SugaredLogger) gin.HandlerFunc {
	if !limitConfig.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	window := time.Duration(limitConfig.WindowSeconds) * time.Second
	var counter windowCounter = newLocalCounter()
	if redisClient != nil {
		counter = &redisCounter{client: redisClient}
	}

	var global *rate.Limiter
	if limitConfig.GlobalRPS > 0 {
		burst := limitConfig.GlobalBurst
		if burst <= 0 {
			burst = int(limitConfig.GlobalRPS)
		}
		global = rate.NewLimiter(rate.Limit(limitConfig.GlobalRPS), burst)
	}

	return func(c *gin.Context) {
		// 跳过特定路径
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if global != nil && !global.Allow() {
			tooManyRequests(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		count, ttl, err := counter.Incr(ctx, "ratelimit:"+c.ClientIP(), window)
		cancel()
		if err != nil {
			// 计数失败时放行
			logger.Warnf("限流计数失败: %v", err)
			c.Next()
			return
		}

		remaining := limitConfig.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("RateLimit-Limit", strconv.FormatInt(limitConfig.MaxRequests, 10))
		c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("RateLimit-Reset", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))

		if count > limitConfig.MaxRequests {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error":   rateLimitMessage,
	})
}
