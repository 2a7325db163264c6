package migration

import (
	"github.com/smallbiznis/lotline/internal/config"
	"github.com/smallbiznis/lotline/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn, cfg.DBType); err != nil {
			return err
		}
		return seed.EnsureDefaultWarehouse(conn, cfg.DefaultWarehouseCode, cfg.DefaultWarehouseName)
	}),
)
