package model

import (
	"time"

	"gorm.io/gorm"
)

type Account struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Version      int       `gorm:"default:1;not null"` // 乐观锁
	CreatedAt    time.Time `gorm:"index;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (Account) TableName() string {
	return "accounts"
}

func AutoMigrate(db *gorm.DB) error {
	return db.Set("gorm:table_options", "COMMENT='账号表'").
		AutoMigrate(&Account{})
}
