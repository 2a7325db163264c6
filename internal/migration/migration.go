package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
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

// RunMigrations brings the schema up to date so the service is usable out of
// the box. Postgres gets versioned SQL migrations; other dialects fall back
// to gorm AutoMigrate, which keeps local sqlite setups working without a
// migration driver.
func RunMigrations(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if strings.EqualFold(dbType, "postgres") {
		return runVersionedMigrations(conn)
	}
	return conn.AutoMigrate(
		&catalogdomain.Product{},
		&warehousedomain.Warehouse{},
		&lotdomain.Lot{},
		&balancedomain.Balance{},
		&ledgerdomain.StockTransaction{},
		&channeldomain.ChannelAllocation{},
		&recondomain.Run{},
		&recondomain.Line{},
		&alertdomain.Alert{},
	)
}

func runVersionedMigrations(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
