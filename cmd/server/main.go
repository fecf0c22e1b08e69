package main

import (
	"context"
	"errors"
	"fmt"
	"linkhub/internal/cache"
	"linkhub/internal/config"
	"linkhub/internal/events"
	"linkhub/internal/handler"
	"linkhub/internal/metrics"
	"linkhub/internal/middleware"
	"linkhub/internal/service"
	"linkhub/internal/shortcode"
	"linkhub/internal/store"
	"linkhub/pkg/database"
	auth "linkhub/pkg/jwt"
	"linkhub/pkg/logger"
	"linkhub/pkg/redis"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "linkhub/docs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisClient "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title linkhub API
// @version 1.0
// @description 短链接与链接聚合页服务
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

var configPath string

var rootCmd = &cobra.Command{
	Use:   "linkhub",
	Short: "短链接与链接聚合页服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行数据库迁移后退出",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer syncLogger()

		db, err := database.Open(cmd.Context(), &cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		zap.S().Info("✅ 数据库迁移成功")
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "配置文件路径")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 加载配置并初始化全局日志
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}
	logger.InitLogger(cfg.Log, cfg.App.IsProduction())
	return cfg, nil
}

func syncLogger() {
	if err := logger.Logger.Sync(); err != nil {
		fmt.Println("日志同步失败:", err)
	}
}

func serve(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer syncLogger()
	sugaredLogger := zap.S()

	// 管理接口依赖令牌签名，没有密钥时不启动
	tokenManager, err := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	if err != nil {
		return fmt.Errorf("认证管理器初始化失败（请通过 JWT_SECRET 或 auth.secret 配置密钥）: %w", err)
	}

	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	sugaredLogger.Info("✅ 数据库连接成功")

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	sugaredLogger.Info("✅ 数据库迁移成功")

	rdb, err := redis.NewRedisClient(ctx, &redis.Options{
		Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
	})
	if err != nil {
		sugaredLogger.Warnf("缓存连接失败，使用进程内缓存: %v", err)
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
			}
		}()
		sugaredLogger.Info("✅ 缓存连接成功")
	}

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	var linkCache cache.LinkCache = cache.NewLocalCache(ttl)
	if rdb != nil {
		linkCache = cache.NewRedisCache(rdb, ttl, sugaredLogger)
	}

	var publisher events.ClickPublisher = events.Nop{}
	if cfg.Events.NatsURL != "" {
		nats, err := events.NewNatsPublisher(cfg.Events.NatsURL, cfg.Events.ClickSubject)
		if err != nil {
			sugaredLogger.Warnf("NATS 连接失败，不推送点击事件: %v", err)
		} else {
			publisher = nats
			sugaredLogger.Info("✅ NATS 连接成功")
		}
	}
	defer publisher.Close()

	st := store.New(db)
	keyspace, err := shortcode.NewKeyspace(st, shortcode.Options{
		Length:      cfg.ShortCode.Length,
		Charset:     cfg.ShortCode.Charset,
		MaxAttempts: cfg.ShortCode.MaxAttempts,
	}, sugaredLogger)
	if err != nil {
		return fmt.Errorf("短名配置无效: %w", err)
	}
	svc := service.New(st, keyspace, linkCache, publisher, sugaredLogger)

	refresher := metrics.NewRefresher(st, sugaredLogger)
	if err := refresher.Start("@every 1m"); err != nil {
		return fmt.Errorf("指标刷新任务启动失败: %w", err)
	}
	defer refresher.Stop()

	if err := handler.EnsureAdmin(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		sugaredLogger.Errorf("创建管理员失败: %v", err)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(cfg, rdb, svc, st, db, tokenManager)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	sugaredLogger.Infof("收到退出信号 %s，开始关闭服务", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务关闭失败: %w", err)
	}
	sugaredLogger.Info("服务已关闭")
	return nil
}

func newRouter(
	cfg *config.Config,
	rdb *redisClient.Client,
	svc *service.Service,
	st *store.Store,
	db *gorm.DB,
	tokenManager *auth.TokenManager,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapRecovery(logger.Logger, !cfg.App.IsProduction()))
	router.Use(middleware.GinZapLogger(logger.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins, zap.S()))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	opts := handler.Options{BaseURL: cfg.App.BaseURL, ExposeDetails: !cfg.App.IsProduction()}
	handler.RegisterRoutes(router, handler.Handlers{
		Link:     handler.NewLinkHandler(svc, opts),
		Hub:      handler.NewHubHandler(svc, opts),
		Redirect: handler.NewRedirectHandler(svc, opts),
		System:   handler.NewSystemHandler(st),
		Auth:     handler.NewAuthHandler(db, tokenManager, opts),
	},
		middleware.RateLimit(rdb, &cfg.RateLimit, zap.S()),
		middleware.AuthMiddleware(tokenManager),
		middleware.AdminMiddleware(),
	)
	return router
}
