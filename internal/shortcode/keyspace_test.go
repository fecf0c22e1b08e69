package shortcode

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRegistry struct {
	taken map[string]bool
	calls int
	err   error
}

func (f *fakeRegistry) IsNameTaken(_ context.Context, name string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.taken[name], nil
}

func newTestKeyspace(t *testing.T, reg Registry) *Keyspace {
	t.Helper()
	ks, err := NewKeyspace(reg, Options{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return ks
}

func TestCheckAvailability_Rules(t *testing.T) {
	reg := &fakeRegistry{taken: map[string]bool{"taken-one": true}}
	ks := newTestKeyspace(t, reg)

	tests := []struct {
		name      string
		candidate string
		available bool
		reason    string
	}{
		{"空字符串", "", false, ReasonEmpty},
		{"只有空白", "   ", false, ReasonEmpty},
		{"过短", "ab", false, ReasonTooShort},
		{"过长", strings.Repeat("a", 51), false, ReasonTooLong},
		{"非法字符", "hello world", false, ReasonCharset},
		{"非法字符优先于保留字检查", "ap!", false, ReasonCharset},
		{"保留字", "admin", false, ReasonReserved},
		{"保留字忽略大小写", "AdMiN", false, ReasonReserved},
		{"服务路由保留", "health", false, ReasonReserved},
		{"已占用", "taken-one", false, ReasonTaken},
		{"首尾空白会被去掉", "  taken-one ", false, ReasonTaken},
		{"边界长度3", "abc", true, ""},
		{"边界长度50", strings.Repeat("z", 50), true, ""},
		{"可用", "my_link-1", true, ""},
		{"长度按字符计算：多字节短名报字符集错误", strings.Repeat("链", 20), false, ReasonCharset},
		{"长度按字符计算：单个重音字符报过短", "é", false, ReasonTooShort},
		{"长度按字符计算：三个重音字符报字符集错误", "ééé", false, ReasonCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ks.CheckAvailability(context.Background(), tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.available, got.Available)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestCheckAvailability_ReservedNeverAvailable(t *testing.T) {
	ks := newTestKeyspace(t, &fakeRegistry{})
	for name := range reservedNames {
		if len(name) < MinNameLength {
			continue
		}
		for _, variant := range []string{name, strings.ToUpper(name), strings.ToUpper(name[:1]) + name[1:]} {
			got, err := ks.CheckAvailability(context.Background(), variant)
			require.NoError(t, err)
			assert.False(t, got.Available, variant)
			assert.Equal(t, ReasonReserved, got.Reason, variant)
		}
	}
}

func TestCheckAvailability_RegistryNotQueriedForInvalidNames(t *testing.T) {
	reg := &fakeRegistry{}
	ks := newTestKeyspace(t, reg)

	_, err := ks.CheckAvailability(context.Background(), "no")
	require.NoError(t, err)
	assert.Zero(t, reg.calls)
}

func TestCheckAvailability_RegistryError(t *testing.T) {
	ks := newTestKeyspace(t, &fakeRegistry{err: errors.New("db down")})

	_, err := ks.CheckAvailability(context.Background(), "valid-name")
	assert.EqualError(t, err, "db down")
}

func TestGenerateUniqueName_Format(t *testing.T) {
	ks := newTestKeyspace(t, &fakeRegistry{})
	pattern := regexp.MustCompile(`^[A-Za-z0-9]{8}$`)

	for i := 0; i < 200; i++ {
		name, err := ks.GenerateUniqueName(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, pattern, name)
	}
}

func TestGenerateUniqueName_RetriesOnCollision(t *testing.T) {
	reg := &fakeRegistry{taken: map[string]bool{"collide1": true, "collide2": true}}
	ks := newTestKeyspace(t, reg)

	seq := []string{"collide1", "collide2", "freename"}
	ks.token = func() (string, error) {
		next := seq[0]
		seq = seq[1:]
		return next, nil
	}

	name, err := ks.GenerateUniqueName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "freename", name)
	assert.Equal(t, 3, reg.calls)
}

func TestGenerateUniqueName_Exhausted(t *testing.T) {
	reg := &fakeRegistry{taken: map[string]bool{"always00": true}}
	ks := newTestKeyspace(t, reg)
	ks.token = func() (string, error) { return "always00", nil }

	_, err := ks.GenerateUniqueName(context.Background())
	assert.ErrorIs(t, err, ErrGenerationExhausted)
	assert.Equal(t, MaxAttempts, reg.calls)
}

func TestNewKeyspace_CustomOptions(t *testing.T) {
	ks, err := NewKeyspace(&fakeRegistry{}, Options{Length: 12, Charset: "xyz"}, zap.NewNop().Sugar())
	require.NoError(t, err)

	name, err := ks.GenerateUniqueName(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^[xyz]{12}$`, name)
}

func TestNewKeyspace_RejectsUnusableOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"长度过短", Options{Length: 2}},
		{"长度过长", Options{Length: 51}},
		{"字符集含非法字符", Options{Charset: "abc!"}},
		{"字符集含空格", Options{Charset: "ab c"}},
		{"字符集含多字节字符", Options{Charset: "abcé"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ks, err := NewKeyspace(&fakeRegistry{}, tt.opts, zap.NewNop().Sugar())
			assert.ErrorIs(t, err, ErrInvalidOptions)
			assert.Nil(t, ks)
		})
	}
}
