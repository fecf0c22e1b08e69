package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// Charset 默认的随机短名字符集
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength 默认的随机短名长度
	CodeLength = 8
	// MaxAttempts 生成随机短名的最大尝试次数
	MaxAttempts = 10

	MinNameLength = 3
	MaxNameLength = 50
)

// 不可用原因
const (
	ReasonEmpty    = "Name cannot be empty"
	ReasonTooShort = "Name must be at least 3 characters long"
	ReasonTooLong  = "Name must be less than 50 characters"
	ReasonCharset  = "Name can only contain letters, numbers, hyphens, and underscores"
	ReasonReserved = "This name is reserved and cannot be used"
	ReasonTaken    = "This name is already taken"
)

var (
	ErrGenerationExhausted = errors.New("unable to generate unique short name")
	ErrInvalidOptions      = errors.New("invalid short name options")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// 保留字，比较时忽略大小写
var reservedNames = lo.SliceToMap([]string{
	"api", "admin", "www", "app", "mail", "ftp", "root",
	"about", "contact", "help", "support", "terms", "privacy",
	"login", "register", "signin", "signup", "auth", "oauth",
	"dashboard", "home", "index", "main", "blog", "news", "hub", "hubs", "h",
	"health", "metrics", "swagger",
}, func(name string) (string, struct{}) {
	return name, struct{}{}
})

// Availability 短名可用性检查结果
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Registry 查询短名是否已被活跃的链接或聚合页占用
type Registry interface {
	IsNameTaken(ctx context.Context, name string) (bool, error)
}

// Options 随机短名参数
type Options struct {
	Length      int
	Charset     string
	MaxAttempts int
}

// Keyspace 链接和聚合页共用的短名空间
type Keyspace struct {
	registry    Registry
	length      int
	charset     string
	maxAttempts int
	token       func() (string, error)
	logger      *zap.SugaredLogger
}

// NewKeyspace 创建短名空间，未设置的参数使用默认值。
// 生成的短名必须能通过 Validate，否则每次生成都会失败，因此长度和字符集在这里校验。
func NewKeyspace(registry Registry, opts Options, logger *zap.SugaredLogger) (*Keyspace, error) {
	k := &Keyspace{
		registry:    registry,
		length:      lo.Ternary(opts.Length > 0, opts.Length, CodeLength),
		charset:     lo.Ternary(opts.Charset != "", opts.Charset, Charset),
		maxAttempts: lo.Ternary(opts.MaxAttempts > 0, opts.MaxAttempts, MaxAttempts),
		logger:      logger.Named("keyspace"),
	}
	if k.length < MinNameLength || k.length > MaxNameLength {
		return nil, fmt.Errorf("%w: length %d must be between %d and %d",
			ErrInvalidOptions, k.length, MinNameLength, MaxNameLength)
	}
	if !namePattern.MatchString(k.charset) {
		return nil, fmt.Errorf("%w: charset %q may only contain letters, numbers, hyphens, and underscores",
			ErrInvalidOptions, k.charset)
	}

	k.token = func() (string, error) {
		return generateRandomString(k.charset, k.length)
	}
	return k, nil
}

// Normalize 去掉首尾空白
func Normalize(name string) string {
	return strings.TrimSpace(name)
}

// IsReserved 判断是否为保留字
func IsReserved(name string) bool {
	_, ok := reservedNames[strings.ToLower(name)]
	return ok
}

// Validate 只做格式和保留字检查，不查询存储
func Validate(name string) (Availability, bool) {
	name = Normalize(name)
	switch {
	case name == "":
		return Availability{Reason: ReasonEmpty}, false
	case utf8.RuneCountInString(name) < MinNameLength:
		return Availability{Reason: ReasonTooShort}, false
	case utf8.RuneCountInString(name) > MaxNameLength:
		return Availability{Reason: ReasonTooLong}, false
	case !namePattern.MatchString(name):
		return Availability{Reason: ReasonCharset}, false
	case IsReserved(name):
		return Availability{Reason: ReasonReserved}, false
	}
	return Availability{Available: true}, true
}

// CheckAvailability 按顺序检查格式、保留字和占用情况，第一个失败即返回
func (k *Keyspace) CheckAvailability(ctx context.Context, candidate string) (Availability, error) {
	if verdict, ok := Validate(candidate); !ok {
		return verdict, nil
	}

	taken, err := k.registry.IsNameTaken(ctx, Normalize(candidate))
	if err != nil {
		return Availability{}, err
	}
	if taken {
		return Availability{Reason: ReasonTaken}, nil
	}
	return Availability{Available: true}, nil
}

// GenerateUniqueName 生成一个当前可用的随机短名
func (k *Keyspace) GenerateUniqueName(ctx context.Context) (string, error) {
	for i := 0; i < k.maxAttempts; i++ {
		name, err := k.token()
		if err != nil {
			return "", err
		}
		verdict, err := k.CheckAvailability(ctx, name)
		if err != nil {
			return "", err
		}
		if verdict.Available {
			return name, nil
		}
		k.logger.Debugw("随机短名冲突，重试", "name", name, "attempt", i+1, "reason", verdict.Reason)
	}
	k.logger.Warnf("已尝试%d次生成短名，但均不可用", k.maxAttempts)
	return "", ErrGenerationExhausted
}

// generateRandomString 使用加密安全的随机数生成器生成一个给定长度的字符串
func generateRandomString(charset string, length int) (string, error) {
	b := make([]byte, length)
	upper := big.NewInt(int64(len(charset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
