package model

import (
	"time"
)

const (
	KindLink = "link"
	KindHub  = "hub"
)

// NameReservation 占用全局短名空间的一条记录。
// 链接和聚合页共用一张表，name 上的唯一索引保证同一短名只有一个活跃持有者。
type NameReservation struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:50;uniqueIndex;not null"`
	Kind      string `gorm:"size:10;not null"`
	CreatedAt time.Time
}

func (NameReservation) TableName() string {
	return "short_names"
}

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&Link{}, &Hub{}, &HubLink{}, &Click{}, &NameReservation{}, &User{},
	}
}
