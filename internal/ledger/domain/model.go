package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
)

// TransactionType classifies a quantity movement.
type TransactionType string

const (
	TypeReceive  TransactionType = "receive"
	TypeReserve  TransactionType = "reserve"
	TypeRelease  TransactionType = "release"
	TypeShip     TransactionType = "ship"
	TypeConsume  TransactionType = "consume"
	TypeAdjust   TransactionType = "adjust"
	TypeTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeReceive, TypeReserve, TypeRelease, TypeShip, TypeConsume, TypeAdjust, TypeTransfer:
		return true
	default:
		return false
	}
}

// StockTransaction is one immutable ledger row. Every balance mutation writes
// exactly one of these inside the same database transaction; rows are never
// updated or deleted afterwards.
type StockTransaction struct {
	ID              snowflake.ID                 `json:"id" gorm:"primaryKey"`
	Number          string                       `json:"number" gorm:"type:text;not null;uniqueIndex:ux_stock_transactions_number"`
	Type            TransactionType              `json:"type" gorm:"type:text;not null;index"`
	LotID           snowflake.ID                 `json:"lot_id" gorm:"not null;index"`
	ProductID       snowflake.ID                 `json:"product_id" gorm:"not null;index"`
	FromWarehouseID *snowflake.ID                `json:"from_warehouse_id,omitempty" gorm:"index"`
	ToWarehouseID   *snowflake.ID                `json:"to_warehouse_id,omitempty" gorm:"index"`
	FromStatus      *balancedomain.BalanceStatus `json:"from_status,omitempty" gorm:"type:text"`
	ToStatus        *balancedomain.BalanceStatus `json:"to_status,omitempty" gorm:"type:text"`
	Quantity        decimal.Decimal              `json:"quantity" gorm:"type:decimal(20,4);not null"`
	Unit            string                       `json:"unit" gorm:"type:text;not null"`
	PreviousBalance decimal.Decimal              `json:"previous_balance" gorm:"type:decimal(20,4);not null"`
	NewBalance      decimal.Decimal              `json:"new_balance" gorm:"type:decimal(20,4);not null"`
	ReferenceType   string                       `json:"reference_type" gorm:"type:text;not null"`
	ReferenceID     string                       `json:"reference_id" gorm:"type:text;not null"`
	PerformedBy     string                       `json:"performed_by" gorm:"type:text"`
	Reason          string                       `json:"reason" gorm:"type:text"`
	CorrelationID   string                       `json:"correlation_id" gorm:"type:text;index"`
	CreatedAt       time.Time                    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (StockTransaction) TableName() string { return "stock_transactions" }

// HistoryFilter narrows QueryHistory results. All fields are optional.
type HistoryFilter struct {
	ProductID   snowflake.ID
	LotID       snowflake.ID
	WarehouseID snowflake.ID
	Type        TransactionType
}

var (
	ErrInvalidType      = errors.New("invalid_transaction_type")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidReference = errors.New("invalid_reference")
)
