package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 主配置结构 - 简化命名
type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Database  DB        `yaml:"database"`
	Cache     Cache     `yaml:"cache"`
	Auth      Auth      `yaml:"auth"`
	RateLimit Limit     `yaml:"rate_limit"`
	CORS      CORS      `yaml:"cors"`
	ShortCode ShortCode `yaml:"shortcode"`
	Events    Events    `yaml:"events"`
	Log       Log       `yaml:"log"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
	BaseURL string `yaml:"base_url"`
}

// IsProduction 生产模式下不向客户端暴露错误细节
func (a App) IsProduction() bool {
	return a.Mode == "production"
}

// 服务器配置
type Server struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// 数据库配置
type DB struct {
	Driver   string `yaml:"driver"` // mysql | postgres | sqlite
	DSN      string `yaml:"dsn"`    // 设置后忽略 host/port 等字段
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	MaxOpen  int    `yaml:"max_open_conns"`
	MaxIdle  int    `yaml:"max_idle_conns"`
}

// 缓存配置（Redis），Host 为空时使用进程内缓存
type Cache struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
	AdminUsername   string `yaml:"admin_username"`
	AdminPassword   string `yaml:"admin_password"`
}

// 限流配置：按客户端 IP 的固定窗口，外加可选的全局令牌桶
type Limit struct {
	Enabled       bool     `yaml:"enabled"`
	WindowSeconds int      `yaml:"window_seconds"`
	MaxRequests   int64    `yaml:"max_requests"`
	GlobalRPS     float64  `yaml:"global_rps"`
	GlobalBurst   int      `yaml:"global_burst"`
	SkipPaths     []string `yaml:"skip_paths"`
}

// 跨域配置
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// 短名生成配置
type ShortCode struct {
	Length      int    `yaml:"length"`
	Charset     string `yaml:"charset"`
	MaxAttempts int    `yaml:"max_attempts"`
}

// 事件推送配置，NatsURL 为空时不推送
type Events struct {
	NatsURL      string `yaml:"nats_url"`
	ClickSubject string `yaml:"click_subject"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		App:    App{Name: "linkhub", Mode: "development", Version: "1.0.0"},
		Server: Server{Port: 3001, ReadTimeout: 10, WriteTimeout: 10},
		Database: DB{
			Driver: "mysql", Host: "localhost", Port: 3306, Name: "linkhub", Charset: "utf8mb4",
			MaxOpen: 10, MaxIdle: 5,
		},
		Cache: Cache{Port: 6379, TTLSeconds: 86400},
		Auth:  Auth{Issuer: "linkhub", ExpirationHours: 24, AdminUsername: "admin"},
		RateLimit: Limit{
			Enabled: true, WindowSeconds: 900, MaxRequests: 100,
		},
		CORS: CORS{AllowedOrigins: []string{
			"https://nanii.icu", "http://localhost:8080", "http://localhost:8082",
		}},
		ShortCode: ShortCode{
			Length:      8,
			Charset:     "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
			MaxAttempts: 10,
		},
		Events: Events{ClickSubject: "linkhub.clicks"},
		Log:    Log{Level: "info", File: "./logs/app.log", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30},
	}
}

// 加载配置：默认值 -> yaml 文件 -> .env -> 环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("APP_MODE"); v != "" {
		cfg.App.Mode = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.App.BaseURL = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Cache.Host = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.WindowSeconds = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_MAX_REQUESTS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RateLimit.MaxRequests = n
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Events.NatsURL = v
	}
}
