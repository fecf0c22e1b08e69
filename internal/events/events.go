// Package events 把点击事件推送到 NATS，供外部分析消费
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// ClickEvent 推送的事件内容
type ClickEvent struct {
	ShortName string    `json:"shortName"`
	LinkID    uint      `json:"linkId"`
	ClickedAt time.Time `json:"clickedAt"`
	Referrer  string    `json:"referrer,omitempty"`
	Country   string    `json:"country,omitempty"`
}

// ClickPublisher 推送点击事件，调用方忽略失败
type ClickPublisher interface {
	PublishClick(ctx context.Context, event ClickEvent) error
	Close()
}

// Nop 未配置 NATS 时使用
type Nop struct{}

func (Nop) PublishClick(context.Context, ClickEvent) error { return nil }
func (Nop) Close()                                         {}

// NatsPublisher 基于 NATS core 的实现
type NatsPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNatsPublisher 连接 NATS，断线后由客户端自动重连
func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("linkhub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	return &NatsPublisher{conn: conn, subject: subject}, nil
}

func (p *NatsPublisher) PublishClick(_ context.Context, event ClickEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal click event")
	}
	return errors.Wrap(p.conn.Publish(p.subject, data), "publish click event")
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}
