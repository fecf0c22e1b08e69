package model

import (
	"time"
)

// Hub 链接聚合页
type Hub struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	HubName     string     `gorm:"size:50;index;not null" json:"hubName"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description,omitempty"`
	Links       []HubLink  `gorm:"constraint:OnDelete:CASCADE" json:"links"`
	CustomName  *string    `gorm:"size:50;index" json:"customName,omitempty"`
	ClickCount  int64      `gorm:"default:0" json:"clickCount"`
	IsActive    bool       `gorm:"default:true;index" json:"isActive"`
	ExpiresAt   *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	UserIP      string     `gorm:"size:45" json:"-"`
	UserAgent   string     `gorm:"type:text" json:"-"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Hub) TableName() string {
	return "hubs"
}

func (h *Hub) Expired(now time.Time) bool {
	return h.ExpiresAt != nil && h.ExpiresAt.Before(now)
}

// HubLink 聚合页中的一个条目，按 Order 升序展示
type HubLink struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	HubID      uint   `gorm:"not null;index" json:"-"`
	Title      string `gorm:"size:100;not null" json:"title"`
	URL        string `gorm:"type:text;not null" json:"url"`
	Order      int    `gorm:"column:sort_order;not null" json:"order"`
	ClickCount int64  `gorm:"default:0" json:"-"`
}

func (HubLink) TableName() string {
	return "hub_links"
}
