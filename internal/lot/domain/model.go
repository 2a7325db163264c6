package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
)

// LotStatus is the lifecycle state of a lot. Lots are created active and may
// only move to one of the terminal states below.
type LotStatus string

const (
	LotStatusActive      LotStatus = "active"
	LotStatusQuarantined LotStatus = "quarantined"
	LotStatusExpired     LotStatus = "expired"
	LotStatusConsumed    LotStatus = "consumed"
)

// LotSourceType records the business event that brought the lot into existence.
type LotSourceType string

const (
	LotSourceProduction LotSourceType = "production"
	LotSourcePurchase   LotSourceType = "purchase"
	LotSourceTransferIn LotSourceType = "transfer_in"
)

// Lot is a traceable batch of a product. Rows are append-only: nothing besides
// the status column is ever updated, and lots are never deleted.
type Lot struct {
	ID              snowflake.ID              `json:"id" gorm:"primaryKey"`
	Code            string                    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_lots_code"`
	ProductID       snowflake.ID              `json:"product_id" gorm:"not null;index"`
	ProductKind     catalogdomain.ProductKind `json:"product_kind" gorm:"type:text;not null"`
	SourceType      LotSourceType             `json:"source_type" gorm:"type:text;not null"`
	SourceRef       string                    `json:"source_ref" gorm:"type:text;not null"`
	Status          LotStatus                 `json:"status" gorm:"type:text;not null;index"`
	ManufactureDate *time.Time                `json:"manufacture_date,omitempty"`
	ExpirationDate  *time.Time                `json:"expiration_date,omitempty"`
	CreatedAt       time.Time                 `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                 `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Lot) TableName() string { return "lots" }

func (s LotStatus) Valid() bool {
	switch s {
	case LotStatusActive, LotStatusQuarantined, LotStatusExpired, LotStatusConsumed:
		return true
	default:
		return false
	}
}

func (s LotSourceType) Valid() bool {
	switch s {
	case LotSourceProduction, LotSourcePurchase, LotSourceTransferIn:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a status change is legal. Only active lots
// transition; terminal states stay terminal.
func (s LotStatus) CanTransitionTo(next LotStatus) bool {
	if s != LotStatusActive {
		return false
	}
	switch next {
	case LotStatusQuarantined, LotStatusExpired, LotStatusConsumed:
		return true
	default:
		return false
	}
}
