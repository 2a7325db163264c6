package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	warehousedomain "github.com/smallbiznis/lotline/internal/warehouse/domain"
	"gorm.io/gorm"
)

// EnsureDefaultWarehouse seeds the default warehouse on startup so receive
// operations work on a fresh database without an operator step.
func EnsureDefaultWarehouse(db *gorm.DB, code, name string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		code = "MAIN"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Main Warehouse"
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing warehousedomain.Warehouse
		if err := tx.Raw(
			`SELECT id, code, name, status FROM warehouses WHERE code = ?`, code,
		).Scan(&existing).Error; err != nil {
			return err
		}
		if existing.ID != 0 {
			return nil
		}
		return tx.Exec(
			`INSERT INTO warehouses (id, code, name, status) VALUES (?, ?, ?, ?)`,
			node.Generate(), code, name, warehousedomain.WarehouseStatusActive,
		).Error
	})
}
