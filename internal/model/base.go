package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 引导各表共用的主键和时间戳。
// 软删除后完成状态查询即视为该步骤未完成。
type BaseModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
