package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	// Find returns nil when no row exists yet; callers treat that as a zero
	// balance, not an error.
	Find(ctx context.Context, db *gorm.DB, lotID, warehouseID snowflake.ID, status BalanceStatus) (*Balance, error)
	// FindForUpdate locks the row for the duration of the surrounding
	// transaction so concurrent movements on the same (lot, warehouse)
	// serialize.
	FindForUpdate(ctx context.Context, tx *gorm.DB, lotID, warehouseID snowflake.ID, status BalanceStatus) (*Balance, error)
	Upsert(ctx context.Context, db *gorm.DB, balance *Balance) error
	// CreateIfAbsent inserts the row unless one already exists for its
	// (lot, warehouse, status) key; an existing row is left untouched.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, balance *Balance) error
	// Adjust applies a delta with an in-database guard against going
	// negative. Returns ErrNegativeBalance when the guard rejects the write
	// and ErrBalanceNotFound when the id does not exist.
	Adjust(ctx context.Context, db *gorm.DB, id snowflake.ID, delta decimal.Decimal) error
	SumByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*ProductAvailability, error)
	SumByLotWarehouse(ctx context.Context, db *gorm.DB, lotID, warehouseID snowflake.ID) (map[BalanceStatus]decimal.Decimal, error)
}
