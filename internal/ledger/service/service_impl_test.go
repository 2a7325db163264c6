package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
	"github.com/smallbiznis/lotline/internal/ledger/domain"
	"github.com/smallbiznis/lotline/internal/ledger/repository"
	"github.com/smallbiznis/lotline/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seeded struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	lotA  snowflake.ID
	lotB  snowflake.ID
	whX   snowflake.ID
	whY   snowflake.ID
	prodA snowflake.ID
}

func newSeeded(t *testing.T) *seeded {
	t.Helper()

	db := testutil.OpenTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := repository.Provide()
	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repo})

	s := &seeded{
		svc:   svc,
		db:    db,
		node:  node,
		lotA:  node.Generate(),
		lotB:  node.Generate(),
		whX:   node.Generate(),
		whY:   node.Generate(),
		prodA: node.Generate(),
	}

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	available := balancedomain.BalanceStatusAvailable
	entries := []*domain.StockTransaction{
		{Type: domain.TypeReceive, LotID: s.lotA, ProductID: s.prodA, ToWarehouseID: &s.whX, ToStatus: &available, CreatedAt: base},
		{Type: domain.TypeReserve, LotID: s.lotA, ProductID: s.prodA, FromWarehouseID: &s.whX, ToWarehouseID: &s.whX, CreatedAt: base.Add(time.Minute)},
		{Type: domain.TypeReceive, LotID: s.lotB, ProductID: s.prodA, ToWarehouseID: &s.whY, ToStatus: &available, CreatedAt: base.Add(2 * time.Minute)},
		{Type: domain.TypeShip, LotID: s.lotA, ProductID: s.prodA, FromWarehouseID: &s.whX, CreatedAt: base.Add(3 * time.Minute)},
	}
	ctx := context.Background()
	for i, entry := range entries {
		entry.ID = node.Generate()
		entry.Number = entry.ID.String()
		entry.Quantity = decimal.NewFromInt(int64(i + 1))
		entry.Unit = "ea"
		entry.ReferenceType = "test"
		entry.ReferenceID = "T-1"
		require.NoError(t, repo.Append(ctx, db, entry))
	}

	return s
}

func TestQueryHistoryNewestFirst(t *testing.T) {
	s := newSeeded(t)

	items, err := s.svc.QueryHistory(context.Background(), domain.HistoryFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, items, 4)
	for i := 1; i < len(items); i++ {
		require.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt))
	}
	require.Equal(t, domain.TypeShip, items[0].Type)
}

func TestQueryHistoryFilters(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	byLot, err := s.svc.QueryHistory(ctx, domain.HistoryFilter{LotID: s.lotA}, 0)
	require.NoError(t, err)
	require.Len(t, byLot, 3)

	byType, err := s.svc.QueryHistory(ctx, domain.HistoryFilter{Type: domain.TypeReceive}, 0)
	require.NoError(t, err)
	require.Len(t, byType, 2)

	// Warehouse filter matches movements into or out of the warehouse.
	byWarehouse, err := s.svc.QueryHistory(ctx, domain.HistoryFilter{WarehouseID: s.whY}, 0)
	require.NoError(t, err)
	require.Len(t, byWarehouse, 1)
	require.Equal(t, s.lotB, byWarehouse[0].LotID)

	combined, err := s.svc.QueryHistory(ctx, domain.HistoryFilter{LotID: s.lotA, Type: domain.TypeShip}, 0)
	require.NoError(t, err)
	require.Len(t, combined, 1)
}

func TestQueryHistoryLimit(t *testing.T) {
	s := newSeeded(t)

	items, err := s.svc.QueryHistory(context.Background(), domain.HistoryFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestQueryHistoryInvalidType(t *testing.T) {
	s := newSeeded(t)

	_, err := s.svc.QueryHistory(context.Background(), domain.HistoryFilter{Type: "teleport"}, 0)
	require.ErrorIs(t, err, domain.ErrInvalidType)
}
