package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID int64 `gorm:"not null;index" json:"category_id"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	//価格は固定小数点（numeric）。JSONでは文字列で返す
	Price decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`

	Stock int64 `gorm:"not null" json:"stock"`

	//重さはグラムで持つ（送料計算用）
	WeightGrams int64 `gorm:"not null;default:0" json:"weight_grams"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
