package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotline/internal/alert"
	"github.com/smallbiznis/lotline/internal/balance"
	"github.com/smallbiznis/lotline/internal/catalog"
	"github.com/smallbiznis/lotline/internal/channel"
	"github.com/smallbiznis/lotline/internal/clock"
	"github.com/smallbiznis/lotline/internal/config"
	"github.com/smallbiznis/lotline/internal/inventory"
	"github.com/smallbiznis/lotline/internal/ledger"
	"github.com/smallbiznis/lotline/internal/lot"
	"github.com/smallbiznis/lotline/internal/migration"
	"github.com/smallbiznis/lotline/internal/observability/metrics"
	"github.com/smallbiznis/lotline/internal/reconciliation"
	"github.com/smallbiznis/lotline/internal/server"
	"github.com/smallbiznis/lotline/internal/warehouse"
	"github.com/smallbiznis/lotline/pkg/db"
	"github.com/smallbiznis/lotline/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional domains
		catalog.Module,
		warehouse.Module,
		lot.Module,
		balance.Module,
		ledger.Module,
		inventory.Module,
		channel.Module,
		reconciliation.Module,
		alert.Module,

		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
