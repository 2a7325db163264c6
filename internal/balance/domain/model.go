package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BalanceStatus is the resting state a quantity sits in. Shipped stock has no
// resting balance; it exists only as ledger history.
type BalanceStatus string

const (
	BalanceStatusAvailable BalanceStatus = "available"
	BalanceStatusReserved  BalanceStatus = "reserved"
)

// Balance is the quantity of one lot at one warehouse in one status. Rows are
// created lazily on first movement and updated in place; a zero quantity is a
// valid resting state, never deleted.
type Balance struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	LotID       snowflake.ID    `json:"lot_id" gorm:"not null;uniqueIndex:ux_balances_lot_wh_status,priority:1"`
	ProductID   snowflake.ID    `json:"product_id" gorm:"not null;index"`
	WarehouseID snowflake.ID    `json:"warehouse_id" gorm:"not null;uniqueIndex:ux_balances_lot_wh_status,priority:2"`
	Status      BalanceStatus   `json:"status" gorm:"type:text;not null;uniqueIndex:ux_balances_lot_wh_status,priority:3"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:decimal(20,4);not null"`
	Unit        string          `json:"unit" gorm:"type:text;not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Balance) TableName() string { return "balances" }

func (s BalanceStatus) Valid() bool {
	switch s {
	case BalanceStatusAvailable, BalanceStatusReserved:
		return true
	default:
		return false
	}
}

// ProductAvailability aggregates balances across all lots and warehouses of a
// product.
type ProductAvailability struct {
	ProductID snowflake.ID    `json:"product_id"`
	Available decimal.Decimal `json:"available"`
	Reserved  decimal.Decimal `json:"reserved"`
	Total     decimal.Decimal `json:"total"`
}

var (
	ErrNegativeBalance = errors.New("negative_balance")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrBalanceNotFound = errors.New("balance_not_found")
)
