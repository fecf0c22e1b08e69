package model

import (
	"time"
)

// Link 短链接模型
type Link struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	ShortName   string     `gorm:"size:50;index;not null" json:"shortName"`
	OriginalURL string     `gorm:"type:text;not null" json:"originalUrl"`
	CustomName  *string    `gorm:"size:50;index" json:"customName,omitempty"`
	ClickCount  int64      `gorm:"default:0" json:"clickCount"`
	IsActive    bool       `gorm:"default:true;index" json:"isActive"`
	ExpiresAt   *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	UserIP      string     `gorm:"size:45" json:"-"`
	UserAgent   string     `gorm:"type:text" json:"-"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}

// Expired 判断链接在 now 时刻是否已过期
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}
