package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
	ledgerdomain "github.com/smallbiznis/lotline/internal/ledger/domain"
	lotdomain "github.com/smallbiznis/lotline/internal/lot/domain"
)

// Service is the allocation and reservation engine: the only code path that
// mutates balance rows. Every operation runs as one database transaction that
// locks the touched balance rows, validates, writes the new balances and
// appends the matching ledger entry.
type Service interface {
	Receive(ctx context.Context, req ReceiveRequest) (*MovementResult, error)
	Reserve(ctx context.Context, req MovementRequest) (*MovementResult, error)
	Release(ctx context.Context, req MovementRequest) (*MovementResult, error)
	Ship(ctx context.Context, req MovementRequest) (*MovementResult, error)
	ProduceOutput(ctx context.Context, req ProductionRequest) (*ProductionResult, error)

	GetBalance(ctx context.Context, lotID, warehouseID snowflake.ID, status balancedomain.BalanceStatus) (decimal.Decimal, error)
	BalanceBreakdown(ctx context.Context, lotID, warehouseID snowflake.ID) (map[balancedomain.BalanceStatus]decimal.Decimal, error)
	AvailabilityByProduct(ctx context.Context, productID snowflake.ID) (*balancedomain.ProductAvailability, error)
	CheckLowStock(ctx context.Context) ([]LowStockItem, error)
}

// MovementRequest drives reserve, release and ship: quantity moves between
// the statuses of an existing lot at a warehouse.
type MovementRequest struct {
	LotID         snowflake.ID    `json:"lot_id"`
	ProductID     snowflake.ID    `json:"product_id"`
	WarehouseID   snowflake.ID    `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	PerformedBy   string          `json:"performed_by,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// ReceiveRequest brings new stock into the system; it carries the unit because
// no balance row may exist yet to take it from.
type ReceiveRequest struct {
	LotID         snowflake.ID    `json:"lot_id"`
	ProductID     snowflake.ID    `json:"product_id"`
	WarehouseID   snowflake.ID    `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	PerformedBy   string          `json:"performed_by,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// ProductionRequest records production output: a fresh production-sourced lot
// plus the opening receive movement into it, committed together.
type ProductionRequest struct {
	ProductID       snowflake.ID    `json:"product_id"`
	WarehouseID     snowflake.ID    `json:"warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	WorkOrderRef    string          `json:"work_order_ref"`
	PerformedBy     string          `json:"performed_by,omitempty"`
	ManufactureDate *time.Time      `json:"manufacture_date,omitempty"`
	ExpirationDate  *time.Time      `json:"expiration_date,omitempty"`
}

type MovementResult struct {
	Transaction     *ledgerdomain.StockTransaction `json:"transaction"`
	PreviousBalance decimal.Decimal                `json:"previous_balance"`
	NewBalance      decimal.Decimal                `json:"new_balance"`
}

type ProductionResult struct {
	Lot      *lotdomain.Lot  `json:"lot"`
	Movement *MovementResult `json:"movement"`
}

type LowStockItem struct {
	ProductID    snowflake.ID    `json:"product_id"`
	SKU          string          `json:"sku"`
	Available    decimal.Decimal `json:"available"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

var (
	ErrInsufficientAvailable = errors.New("insufficient_available")
	ErrInsufficientReserved  = errors.New("insufficient_reserved")
	ErrInvalidQuantity       = errors.New("invalid_quantity")
	ErrInvalidUnit           = errors.New("invalid_unit")
	ErrInvalidWarehouse      = errors.New("invalid_warehouse")
	ErrInvalidProduct        = errors.New("invalid_product")
	ErrInvalidReference      = errors.New("invalid_reference")
)
