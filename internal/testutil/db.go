package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	alertdomain "github.com/smallbiznis/lotline/internal/alert/domain"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	channeldomain "github.com/smallbiznis/lotline/internal/channel/domain"
	ledgerdomain "github.com/smallbiznis/lotline/internal/ledger/domain"
	lotdomain "github.com/smallbiznis/lotline/internal/lot/domain"
	recondomain "github.com/smallbiznis/lotline/internal/reconciliation/domain"
	warehousedomain "github.com/smallbiznis/lotline/internal/warehouse/domain"
	"gorm.io/gorm"
)

// OpenTestDB opens an isolated in-memory sqlite database with the full schema
// applied. Each test gets its own database keyed by the test name.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripForUpdate)
	db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripForUpdate)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&catalogdomain.Product{},
		&warehousedomain.Warehouse{},
		&lotdomain.Lot{},
		&balancedomain.Balance{},
		&ledgerdomain.StockTransaction{},
		&channeldomain.ChannelAllocation{},
		&recondomain.Run{},
		&recondomain.Line{},
		&alertdomain.Alert{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	return db
}
