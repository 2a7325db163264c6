package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Append inserts a ledger row inside the caller's transaction so the
	// entry commits atomically with its paired balance mutation.
	Append(ctx context.Context, tx *gorm.DB, entry *StockTransaction) error
	Query(ctx context.Context, db *gorm.DB, filter HistoryFilter, limit int) ([]StockTransaction, error)
}
