package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type WarehouseStatus string

const (
	WarehouseStatusActive   WarehouseStatus = "active"
	WarehouseStatusInactive WarehouseStatus = "inactive"
)

type Warehouse struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	Code      string          `json:"code" gorm:"type:text;not null;uniqueIndex:ux_warehouses_code"`
	Name      string          `json:"name" gorm:"type:text;not null"`
	Status    WarehouseStatus `json:"status" gorm:"type:text;not null;default:'active'"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Warehouse) TableName() string { return "warehouses" }
