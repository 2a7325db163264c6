package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/lotline/internal/balance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const balanceColumns = `id, lot_id, product_id, warehouse_id, status, quantity, unit, updated_at`

func (r *repo) Find(ctx context.Context, db *gorm.DB, lotID, warehouseID snowflake.ID, status domain.BalanceStatus) (*domain.Balance, error) {
	var b domain.Balance
	err := db.WithContext(ctx).Raw(
		`SELECT `+balanceColumns+`
		 FROM balances
		 WHERE lot_id = ? AND warehouse_id = ? AND status = ?`,
		lotID,
		warehouseID,
		status,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) FindForUpdate(ctx context.Context, tx *gorm.DB, lotID, warehouseID snowflake.ID, status domain.BalanceStatus) (*domain.Balance, error) {
	var b domain.Balance
	err := tx.WithContext(ctx).Raw(
		`SELECT `+balanceColumns+`
		 FROM balances
		 WHERE lot_id = ? AND warehouse_id = ? AND status = ?
		 FOR UPDATE`,
		lotID,
		warehouseID,
		status,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, balance *domain.Balance) error {
	if balance.Quantity.IsNegative() {
		return domain.ErrNegativeBalance
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO balances (`+balanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (lot_id, warehouse_id, status)
		 DO UPDATE SET quantity = EXCLUDED.quantity,
		               unit = CASE WHEN EXCLUDED.unit = '' THEN balances.unit ELSE EXCLUDED.unit END,
		               updated_at = EXCLUDED.updated_at`,
		balance.ID,
		balance.LotID,
		balance.ProductID,
		balance.WarehouseID,
		balance.Status,
		balance.Quantity,
		balance.Unit,
		balance.UpdatedAt,
	).Error
}

// CreateIfAbsent inserts the row only when no row exists for its
// (lot, warehouse, status) key. An existing row is left untouched, so callers
// can seed a zero row and then take a row lock on whichever insert won.
func (r *repo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, balance *domain.Balance) error {
	if balance.Quantity.IsNegative() {
		return domain.ErrNegativeBalance
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO balances (`+balanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (lot_id, warehouse_id, status) DO NOTHING`,
		balance.ID,
		balance.LotID,
		balance.ProductID,
		balance.WarehouseID,
		balance.Status,
		balance.Quantity,
		balance.Unit,
		balance.UpdatedAt,
	).Error
}

func (r *repo) Adjust(ctx context.Context, db *gorm.DB, id snowflake.ID, delta decimal.Decimal) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE balances
		 SET quantity = quantity + ?, updated_at = ?
		 WHERE id = ? AND quantity + ? >= 0`,
		delta,
		time.Now().UTC(),
		id,
		delta,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Zero rows updated means either the guard rejected a negative result
		// or the id does not exist; tell the two apart for the caller.
		var count int64
		if err := db.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM balances WHERE id = ?`, id,
		).Scan(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrBalanceNotFound
		}
		return domain.ErrNegativeBalance
	}
	return nil
}

func (r *repo) SumByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*domain.ProductAvailability, error) {
	var row struct {
		Available decimal.Decimal
		Reserved  decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
		   COALESCE(SUM(CASE WHEN status = ? THEN quantity ELSE 0 END), 0) AS available,
		   COALESCE(SUM(CASE WHEN status = ? THEN quantity ELSE 0 END), 0) AS reserved
		 FROM balances
		 WHERE product_id = ?`,
		domain.BalanceStatusAvailable,
		domain.BalanceStatusReserved,
		productID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domain.ProductAvailability{
		ProductID: productID,
		Available: row.Available,
		Reserved:  row.Reserved,
		Total:     row.Available.Add(row.Reserved),
	}, nil
}

func (r *repo) SumByLotWarehouse(ctx context.Context, db *gorm.DB, lotID, warehouseID snowflake.ID) (map[domain.BalanceStatus]decimal.Decimal, error) {
	var rows []struct {
		Status   domain.BalanceStatus
		Quantity decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT status, quantity
		 FROM balances
		 WHERE lot_id = ? AND warehouse_id = ?`,
		lotID,
		warehouseID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.BalanceStatus]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Quantity
	}
	return out, nil
}
