package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	alertrepository "github.com/smallbiznis/lotline/internal/alert/repository"
	alertservice "github.com/smallbiznis/lotline/internal/alert/service"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
	balancerepository "github.com/smallbiznis/lotline/internal/balance/repository"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/lotline/internal/catalog/repository"
	"github.com/smallbiznis/lotline/internal/clock"
	"github.com/smallbiznis/lotline/internal/inventory/domain"
	ledgerdomain "github.com/smallbiznis/lotline/internal/ledger/domain"
	ledgerrepository "github.com/smallbiznis/lotline/internal/ledger/repository"
	lotdomain "github.com/smallbiznis/lotline/internal/lot/domain"
	lotrepository "github.com/smallbiznis/lotline/internal/lot/repository"
	lotservice "github.com/smallbiznis/lotline/internal/lot/service"
	"github.com/smallbiznis/lotline/internal/testutil"
	warehousedomain "github.com/smallbiznis/lotline/internal/warehouse/domain"
	warehouserepository "github.com/smallbiznis/lotline/internal/warehouse/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	svc         domain.Service
	ledgerRepo  ledgerdomain.Repository
	balanceRepo balancedomain.Repository
	catalogRepo catalogdomain.Repository
	node        *snowflake.Node
	clk         *clock.FakeClock
	product     *catalogdomain.Product
	warehouse   *warehousedomain.Warehouse
	lot         *lotdomain.Lot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	catalogRepo := catalogrepository.Provide()
	warehouseRepo := warehouserepository.Provide()
	lotRepo := lotrepository.Provide()
	balanceRepo := balancerepository.Provide()
	ledgerRepo := ledgerrepository.Provide()

	lotSvc := lotservice.New(lotservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        lotRepo,
		CatalogRepo: catalogRepo,
	})

	svc := New(Params{
		DB:            db,
		Log:           log,
		GenID:         node,
		Clock:         clk,
		BalanceRepo:   balanceRepo,
		LedgerRepo:    ledgerRepo,
		LotRepo:       lotRepo,
		LotSvc:        lotSvc,
		CatalogRepo:   catalogRepo,
		WarehouseRepo: warehouseRepo,
	})

	ctx := context.Background()
	product := &catalogdomain.Product{
		ID:        node.Generate(),
		SKU:       "WIDGET-1",
		Name:      "Widget",
		Unit:      "ea",
		Kind:      catalogdomain.ProductKindFinishedGood,
		Active:    true,
		CreatedAt: clk.Now(),
		UpdatedAt: clk.Now(),
	}
	require.NoError(t, catalogRepo.Create(ctx, db, product))

	warehouse := &warehousedomain.Warehouse{
		ID:        node.Generate(),
		Code:      "MAIN",
		Name:      "Main Warehouse",
		Status:    warehousedomain.WarehouseStatusActive,
		CreatedAt: clk.Now(),
		UpdatedAt: clk.Now(),
	}
	require.NoError(t, warehouseRepo.Create(ctx, db, warehouse))

	lotID := node.Generate()
	l := &lotdomain.Lot{
		ID:          lotID,
		Code:        fmt.Sprintf("LOT-%s", lotID),
		ProductID:   product.ID,
		ProductKind: product.Kind,
		SourceType:  lotdomain.LotSourcePurchase,
		SourceRef:   "PO-1001",
		Status:      lotdomain.LotStatusActive,
		CreatedAt:   clk.Now(),
		UpdatedAt:   clk.Now(),
	}
	require.NoError(t, lotRepo.Create(ctx, db, l))

	return &fixture{
		db:          db,
		svc:         svc,
		ledgerRepo:  ledgerRepo,
		balanceRepo: balanceRepo,
		catalogRepo: catalogRepo,
		node:        node,
		clk:         clk,
		product:     product,
		warehouse:   warehouse,
		lot:         l,
	}
}

func (f *fixture) receive(t *testing.T, qty string) *domain.MovementResult {
	t.Helper()
	res, err := f.svc.Receive(context.Background(), domain.ReceiveRequest{
		LotID:         f.lot.ID,
		ProductID:     f.product.ID,
		WarehouseID:   f.warehouse.ID,
		Quantity:      decimal.RequireFromString(qty),
		Unit:          "ea",
		ReferenceType: "purchase_order",
		ReferenceID:   "PO-1001",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) movement(qty, refType, refID string) domain.MovementRequest {
	return domain.MovementRequest{
		LotID:         f.lot.ID,
		ProductID:     f.product.ID,
		WarehouseID:   f.warehouse.ID,
		Quantity:      decimal.RequireFromString(qty),
		ReferenceType: refType,
		ReferenceID:   refID,
	}
}

func (f *fixture) balance(t *testing.T, status balancedomain.BalanceStatus) decimal.Decimal {
	t.Helper()
	qty, err := f.svc.GetBalance(context.Background(), f.lot.ID, f.warehouse.ID, status)
	require.NoError(t, err)
	return qty
}

func TestReceiveReserveShipLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.receive(t, "100")
	require.True(t, rec.PreviousBalance.IsZero())
	require.True(t, rec.NewBalance.Equal(decimal.RequireFromString("100")))

	res, err := f.svc.Reserve(ctx, f.movement("30", "sales_order", "SO-1"))
	require.NoError(t, err)
	require.True(t, res.PreviousBalance.Equal(decimal.RequireFromString("100")))
	require.True(t, res.NewBalance.Equal(decimal.RequireFromString("70")))

	ship, err := f.svc.Ship(ctx, f.movement("30", "sales_order", "SO-1"))
	require.NoError(t, err)
	require.True(t, ship.PreviousBalance.Equal(decimal.RequireFromString("30")))
	require.True(t, ship.NewBalance.IsZero())

	require.True(t, f.balance(t, balancedomain.BalanceStatusAvailable).Equal(decimal.RequireFromString("70")))
	require.True(t, f.balance(t, balancedomain.BalanceStatusReserved).IsZero())

	history, err := f.ledgerRepo.Query(ctx, f.db, ledgerdomain.HistoryFilter{LotID: f.lot.ID}, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)

	types := map[ledgerdomain.TransactionType]bool{}
	for _, entry := range history {
		types[entry.Type] = true
		require.NotEmpty(t, entry.Number)
		require.NotEmpty(t, entry.CorrelationID)
	}
	require.True(t, types[ledgerdomain.TypeReceive])
	require.True(t, types[ledgerdomain.TypeReserve])
	require.True(t, types[ledgerdomain.TypeShip])
}

func TestReserveMoreThanAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, "10")

	_, err := f.svc.Reserve(ctx, f.movement("15", "sales_order", "SO-2"))
	require.ErrorIs(t, err, domain.ErrInsufficientAvailable)

	// Rejected movements leave balances untouched and write no ledger entry.
	require.True(t, f.balance(t, balancedomain.BalanceStatusAvailable).Equal(decimal.RequireFromString("10")))
	require.True(t, f.balance(t, balancedomain.BalanceStatusReserved).IsZero())

	history, err := f.ledgerRepo.Query(ctx, f.db, ledgerdomain.HistoryFilter{LotID: f.lot.ID}, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, ledgerdomain.TypeReceive, history[0].Type)
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, "50")

	_, err := f.svc.Reserve(ctx, f.movement("20", "sales_order", "SO-3"))
	require.NoError(t, err)

	rel, err := f.svc.Release(ctx, f.movement("20", "sales_order", "SO-3"))
	require.NoError(t, err)
	require.True(t, rel.PreviousBalance.Equal(decimal.RequireFromString("20")))
	require.True(t, rel.NewBalance.IsZero())

	require.True(t, f.balance(t, balancedomain.BalanceStatusAvailable).Equal(decimal.RequireFromString("50")))
	require.True(t, f.balance(t, balancedomain.BalanceStatusReserved).IsZero())
}

func TestShipRequiresReservedStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, "50")

	_, err := f.svc.Ship(ctx, f.movement("10", "sales_order", "SO-4"))
	require.ErrorIs(t, err, domain.ErrInsufficientReserved)

	require.True(t, f.balance(t, balancedomain.BalanceStatusAvailable).Equal(decimal.RequireFromString("50")))
}

func TestReserveLastUnitTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, "1")

	_, err := f.svc.Reserve(ctx, f.movement("1", "sales_order", "SO-5"))
	require.NoError(t, err)

	_, err = f.svc.Reserve(ctx, f.movement("1", "sales_order", "SO-6"))
	require.ErrorIs(t, err, domain.ErrInsufficientAvailable)

	require.True(t, f.balance(t, balancedomain.BalanceStatusReserved).Equal(decimal.RequireFromString("1")))
	require.True(t, f.balance(t, balancedomain.BalanceStatusAvailable).IsZero())
}

func TestMovementValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Receive(ctx, domain.ReceiveRequest{
		LotID:         f.lot.ID,
		ProductID:     f.product.ID,
		WarehouseID:   f.warehouse.ID,
		Quantity:      decimal.Zero,
		Unit:          "ea",
		ReferenceType: "purchase_order",
		ReferenceID:   "PO-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Receive(ctx, domain.ReceiveRequest{
		LotID:         f.lot.ID,
		ProductID:     f.product.ID,
		WarehouseID:   f.warehouse.ID,
		Quantity:      decimal.RequireFromString("5"),
		ReferenceType: "purchase_order",
		ReferenceID:   "PO-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidUnit)

	_, err = f.svc.Reserve(ctx, domain.MovementRequest{
		LotID:       f.lot.ID,
		ProductID:   f.product.ID,
		WarehouseID: f.warehouse.ID,
		Quantity:    decimal.RequireFromString("5"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = f.svc.Reserve(ctx, f.movement("-5", "sales_order", "SO-7"))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestReceiveUnknownLotOrWarehouse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Receive(ctx, domain.ReceiveRequest{
		LotID:         f.node.Generate(),
		ProductID:     f.product.ID,
		WarehouseID:   f.warehouse.ID,
		Quantity:      decimal.RequireFromString("5"),
		Unit:          "ea",
		ReferenceType: "purchase_order",
		ReferenceID:   "PO-1",
	})
	require.ErrorIs(t, err, lotdomain.ErrLotNotFound)

	_, err = f.svc.Receive(ctx, domain.ReceiveRequest{
		LotID:         f.lot.ID,
		ProductID:     f.product.ID,
		WarehouseID:   f.node.Generate(),
		Quantity:      decimal.RequireFromString("5"),
		Unit:          "ea",
		ReferenceType: "purchase_order",
		ReferenceID:   "PO-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidWarehouse)
}

func TestQuantityConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, "200")

	shipped := decimal.Zero
	steps := []struct {
		op  string
		qty string
	}{
		{"reserve", "40"},
		{"release", "10"},
		{"ship", "20"},
		{"reserve", "55"},
		{"ship", "45.5"},
		{"release", "19.5"},
		{"reserve", "0.5"},
		{"ship", "0.5"},
	}
	for i, step := range steps {
		req := f.movement(step.qty, "sales_order", fmt.Sprintf("SO-%d", i))
		var err error
		switch step.op {
		case "reserve":
			_, err = f.svc.Reserve(ctx, req)
		case "release":
			_, err = f.svc.Release(ctx, req)
		case "ship":
			_, err = f.svc.Ship(ctx, req)
		}
		require.NoError(t, err, "step %d (%s %s)", i, step.op, step.qty)
		if step.op == "ship" {
			shipped = shipped.Add(decimal.RequireFromString(step.qty))
		}
	}

	avail := f.balance(t, balancedomain.BalanceStatusAvailable)
	reserved := f.balance(t, balancedomain.BalanceStatusReserved)
	total := avail.Add(reserved).Add(shipped)
	require.True(t, total.Equal(decimal.RequireFromString("200")),
		"available %s + reserved %s + shipped %s != received 200", avail, reserved, shipped)

	// Every ledger entry lands the same balance its successor starts from.
	history, err := f.ledgerRepo.Query(ctx, f.db, ledgerdomain.HistoryFilter{LotID: f.lot.ID}, 100)
	require.NoError(t, err)
	require.Len(t, history, len(steps)+1)
	for _, entry := range history {
		switch entry.Type {
		case ledgerdomain.TypeReceive, ledgerdomain.TypeRelease:
			require.True(t, entry.NewBalance.Sub(entry.PreviousBalance).Equal(entry.Quantity))
		case ledgerdomain.TypeReserve, ledgerdomain.TypeShip:
			require.True(t, entry.PreviousBalance.Sub(entry.NewBalance).Equal(entry.Quantity))
		}
	}
}

func TestProduceOutput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.ProduceOutput(ctx, domain.ProductionRequest{
		ProductID:    f.product.ID,
		WarehouseID:  f.warehouse.ID,
		Quantity:     decimal.RequireFromString("75"),
		WorkOrderRef: "WO-42",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Lot)
	require.Equal(t, lotdomain.LotSourceProduction, res.Lot.SourceType)
	require.Equal(t, "WO-42", res.Lot.SourceRef)
	require.Equal(t, lotdomain.LotStatusActive, res.Lot.Status)

	require.Equal(t, ledgerdomain.TypeReceive, res.Movement.Transaction.Type)
	require.Equal(t, "work_order", res.Movement.Transaction.ReferenceType)
	require.Equal(t, "WO-42", res.Movement.Transaction.ReferenceID)

	qty, err := f.svc.GetBalance(ctx, res.Lot.ID, f.warehouse.ID, balancedomain.BalanceStatusAvailable)
	require.NoError(t, err)
	require.True(t, qty.Equal(decimal.RequireFromString("75")))
}

func TestProduceOutputValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ProduceOutput(ctx, domain.ProductionRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.warehouse.ID,
		Quantity:    decimal.RequireFromString("10"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = f.svc.ProduceOutput(ctx, domain.ProductionRequest{
		ProductID:    f.node.Generate(),
		WarehouseID:  f.warehouse.ID,
		Quantity:     decimal.RequireFromString("10"),
		WorkOrderRef: "WO-43",
	})
	require.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestAvailabilityByProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, "80")
	_, err := f.svc.Reserve(ctx, f.movement("30", "sales_order", "SO-8"))
	require.NoError(t, err)

	availability, err := f.svc.AvailabilityByProduct(ctx, f.product.ID)
	require.NoError(t, err)
	require.True(t, availability.Available.Equal(decimal.RequireFromString("50")))
	require.True(t, availability.Reserved.Equal(decimal.RequireFromString("30")))
	require.True(t, availability.Total.Equal(decimal.RequireFromString("80")))
}

func TestCheckLowStockRaisesAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Exec(
		`UPDATE products SET reorder_level = ? WHERE id = ?`,
		decimal.RequireFromString("25"), f.product.ID,
	).Error)

	alertRepo := alertrepository.Provide()
	alertSvc := alertservice.New(alertservice.Params{
		DB:    f.db,
		Log:   zap.NewNop(),
		GenID: f.node,
		Clock: f.clk,
		Repo:  alertRepo,
	})
	svc := f.svc.(*Service)
	svc.alertSvc = alertSvc

	f.receive(t, "10")

	low, err := f.svc.CheckLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, f.product.ID, low[0].ProductID)
	require.True(t, low[0].Available.Equal(decimal.RequireFromString("10")))

	alerts, err := alertSvc.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, "inventory.low_stock", alerts[0].Source)
}

func TestGetBalanceDefaultsToZero(t *testing.T) {
	f := newFixture(t)
	qty := f.balance(t, balancedomain.BalanceStatusAvailable)
	require.True(t, qty.IsZero())
}

func TestLockBalanceSeedsAndReusesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.svc.(*Service)

	// Absent row: a zero row is inserted and handed back under lock.
	err := f.db.Transaction(func(tx *gorm.DB) error {
		row, lockErr := svc.lockBalance(ctx, tx, f.lot.ID, f.product.ID, f.warehouse.ID, balancedomain.BalanceStatusAvailable, "ea")
		require.NoError(t, lockErr)
		require.NotNil(t, row)
		require.True(t, row.Quantity.IsZero())
		return nil
	})
	require.NoError(t, err)

	f.receive(t, "75")

	// Existing row: the committed quantity comes back, never a fresh zero.
	err = f.db.Transaction(func(tx *gorm.DB) error {
		row, lockErr := svc.lockBalance(ctx, tx, f.lot.ID, f.product.ID, f.warehouse.ID, balancedomain.BalanceStatusAvailable, "ea")
		require.NoError(t, lockErr)
		require.NotNil(t, row)
		require.True(t, row.Quantity.Equal(decimal.RequireFromString("75")))
		return nil
	})
	require.NoError(t, err)
}

func TestBalanceBreakdown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, "100")
	_, err := f.svc.Reserve(ctx, f.movement("40", "sales_order", "SO-7001"))
	require.NoError(t, err)

	breakdown, err := f.svc.BalanceBreakdown(ctx, f.lot.ID, f.warehouse.ID)
	require.NoError(t, err)
	require.True(t, breakdown[balancedomain.BalanceStatusAvailable].Equal(decimal.RequireFromString("60")))
	require.True(t, breakdown[balancedomain.BalanceStatusReserved].Equal(decimal.RequireFromString("40")))
}
