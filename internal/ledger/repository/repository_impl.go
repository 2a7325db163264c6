package repository

import (
	"context"

	"github.com/smallbiznis/lotline/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Append(ctx context.Context, tx *gorm.DB, entry *domain.StockTransaction) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO stock_transactions (
			id, number, type, lot_id, product_id,
			from_warehouse_id, to_warehouse_id, from_status, to_status,
			quantity, unit, previous_balance, new_balance,
			reference_type, reference_id, performed_by, reason, correlation_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Number,
		entry.Type,
		entry.LotID,
		entry.ProductID,
		entry.FromWarehouseID,
		entry.ToWarehouseID,
		entry.FromStatus,
		entry.ToStatus,
		entry.Quantity,
		entry.Unit,
		entry.PreviousBalance,
		entry.NewBalance,
		entry.ReferenceType,
		entry.ReferenceID,
		entry.PerformedBy,
		entry.Reason,
		entry.CorrelationID,
		entry.CreatedAt,
	).Error
}

func (r *repo) Query(ctx context.Context, db *gorm.DB, filter domain.HistoryFilter, limit int) ([]domain.StockTransaction, error) {
	var items []domain.StockTransaction
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.StockTransaction{}), filter)
	err := stmt.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func applyFilter(stmt *gorm.DB, filter domain.HistoryFilter) *gorm.DB {
	if filter.ProductID != 0 {
		stmt = stmt.Where("product_id = ?", filter.ProductID)
	}
	if filter.LotID != 0 {
		stmt = stmt.Where("lot_id = ?", filter.LotID)
	}
	if filter.WarehouseID != 0 {
		stmt = stmt.Where("from_warehouse_id = ? OR to_warehouse_id = ?", filter.WarehouseID, filter.WarehouseID)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	return stmt
}
