package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/lotline/internal/catalog/repository"
	"github.com/smallbiznis/lotline/internal/clock"
	"github.com/smallbiznis/lotline/internal/lot/domain"
	"github.com/smallbiznis/lotline/internal/lot/repository"
	"github.com/smallbiznis/lotline/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *catalogdomain.Product, *snowflake.Node) {
	t.Helper()

	db := testutil.OpenTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	catalogRepo := catalogrepository.Provide()

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		CatalogRepo: catalogRepo,
	})

	product := &catalogdomain.Product{
		ID:        node.Generate(),
		SKU:       "RAW-COIL",
		Name:      "Steel Coil",
		Unit:      "kg",
		Kind:      catalogdomain.ProductKindRawMaterial,
		Active:    true,
		CreatedAt: clk.Now(),
		UpdatedAt: clk.Now(),
	}
	require.NoError(t, catalogRepo.Create(context.Background(), db, product))

	return svc, db, product, node
}

func TestCreateLot(t *testing.T) {
	svc, _, product, _ := newService(t)
	ctx := context.Background()

	lot, err := svc.Create(ctx, domain.CreateRequest{
		ProductID:   product.ID,
		ProductKind: product.Kind,
		SourceType:  domain.LotSourcePurchase,
		SourceRef:   "PO-55",
	})
	require.NoError(t, err)
	require.Equal(t, domain.LotStatusActive, lot.Status)
	require.Contains(t, lot.Code, "LOT-")

	fetched, err := svc.Get(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, lot.Code, fetched.Code)

	byCode, err := svc.GetByCode(ctx, lot.Code)
	require.NoError(t, err)
	require.Equal(t, lot.ID, byCode.ID)
}

func TestCreateLotValidation(t *testing.T) {
	svc, _, product, node := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{
		ProductKind: product.Kind,
		SourceType:  domain.LotSourcePurchase,
		SourceRef:   "PO-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidProduct)

	_, err = svc.Create(ctx, domain.CreateRequest{
		ProductID:   product.ID,
		ProductKind: "widget",
		SourceType:  domain.LotSourcePurchase,
		SourceRef:   "PO-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidKind)

	_, err = svc.Create(ctx, domain.CreateRequest{
		ProductID:   product.ID,
		ProductKind: product.Kind,
		SourceType:  "stolen",
		SourceRef:   "PO-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidSourceType)

	_, err = svc.Create(ctx, domain.CreateRequest{
		ProductID:   product.ID,
		ProductKind: product.Kind,
		SourceType:  domain.LotSourcePurchase,
		SourceRef:   "   ",
	})
	require.ErrorIs(t, err, domain.ErrInvalidSourceRef)

	_, err = svc.Create(ctx, domain.CreateRequest{
		ProductID:   node.Generate(),
		ProductKind: product.Kind,
		SourceType:  domain.LotSourcePurchase,
		SourceRef:   "PO-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestTransitionStatus(t *testing.T) {
	svc, _, product, _ := newService(t)
	ctx := context.Background()

	lot, err := svc.Create(ctx, domain.CreateRequest{
		ProductID:   product.ID,
		ProductKind: product.Kind,
		SourceType:  domain.LotSourceProduction,
		SourceRef:   "WO-9",
	})
	require.NoError(t, err)

	updated, err := svc.TransitionStatus(ctx, lot.ID, domain.LotStatusQuarantined)
	require.NoError(t, err)
	require.Equal(t, domain.LotStatusQuarantined, updated.Status)

	// Terminal states never transition again.
	_, err = svc.TransitionStatus(ctx, lot.ID, domain.LotStatusExpired)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.TransitionStatus(ctx, lot.ID, domain.LotStatusActive)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransitionStatusValidation(t *testing.T) {
	svc, _, product, node := newService(t)
	ctx := context.Background()

	lot, err := svc.Create(ctx, domain.CreateRequest{
		ProductID:   product.ID,
		ProductKind: product.Kind,
		SourceType:  domain.LotSourcePurchase,
		SourceRef:   "PO-2",
	})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, lot.ID, "melted")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.TransitionStatus(ctx, node.Generate(), domain.LotStatusExpired)
	require.ErrorIs(t, err, domain.ErrLotNotFound)
}
