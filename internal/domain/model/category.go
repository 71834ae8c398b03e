package model

import "time"

// 商品カテゴリ
type Category struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//カテゴリ名（重複不可）
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`

	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
