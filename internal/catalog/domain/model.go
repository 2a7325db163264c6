package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ProductKind distinguishes raw materials from sellable finished goods.
type ProductKind string

const (
	ProductKindRawMaterial  ProductKind = "raw_material"
	ProductKindFinishedGood ProductKind = "finished_good"
)

type Product struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	SKU          string          `json:"sku" gorm:"type:text;not null;uniqueIndex:ux_products_sku"`
	Name         string          `json:"name" gorm:"type:text;not null"`
	Unit         string          `json:"unit" gorm:"type:text;not null"`
	Kind         ProductKind     `json:"kind" gorm:"type:text;not null"`
	ReorderLevel decimal.Decimal `json:"reorder_level" gorm:"type:decimal(20,4);not null;default:0"`
	Active       bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

func (k ProductKind) Valid() bool {
	switch k {
	case ProductKindRawMaterial, ProductKindFinishedGood:
		return true
	default:
		return false
	}
}
