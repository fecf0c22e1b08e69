package model

import (
	"time"
)

// Click 一次跳转记录，只追加不修改
type Click struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	LinkID    uint      `gorm:"not null;index" json:"linkId"`
	ClickedAt time.Time `gorm:"not null;index" json:"clickedAt"`
	UserIP    string    `gorm:"size:45" json:"userIp,omitempty"`
	UserAgent string    `gorm:"type:text" json:"userAgent,omitempty"`
	Referrer  string    `gorm:"type:text" json:"referrer,omitempty"`
	Country   string    `gorm:"size:100" json:"country,omitempty"`
}

func (Click) TableName() string {
	return "clicks"
}
