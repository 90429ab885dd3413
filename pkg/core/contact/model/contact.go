package model

import (
	"time"

	"gorm.io/gorm"
)

type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(250);index;not null"`
	Email     string    `gorm:"type:varchar(250);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}

func AutoMigrate(db *gorm.DB) error {
	return db.Set("gorm:table_options", "COMMENT='联系人表'").
		AutoMigrate(&Contact{})
}
