package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/lotline/internal/catalog/domain"
	"github.com/smallbiznis/lotline/internal/catalog/repository"
	"github.com/smallbiznis/lotline/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) domain.Service {
	t.Helper()

	db := testutil.OpenTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateProduct(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, domain.CreateRequest{
		SKU:          "FG-CHAIR",
		Name:         "Chair",
		Unit:         "ea",
		Kind:         domain.ProductKindFinishedGood,
		ReorderLevel: "12",
	})
	require.NoError(t, err)
	require.True(t, product.Active)
	require.True(t, product.ReorderLevel.Equal(decimal.RequireFromString("12")))

	fetched, err := svc.Get(ctx, product.ID.String())
	require.NoError(t, err)
	require.Equal(t, "FG-CHAIR", fetched.SKU)

	_, err = svc.Create(ctx, domain.CreateRequest{
		SKU:  "FG-CHAIR",
		Name: "Another Chair",
		Unit: "ea",
		Kind: domain.ProductKindFinishedGood,
	})
	require.ErrorIs(t, err, domain.ErrSKUExists)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.CreateRequest
		want error
	}{
		{"missing sku", domain.CreateRequest{Name: "x", Unit: "ea", Kind: domain.ProductKindRawMaterial}, domain.ErrInvalidSKU},
		{"missing name", domain.CreateRequest{SKU: "A", Unit: "ea", Kind: domain.ProductKindRawMaterial}, domain.ErrInvalidName},
		{"missing unit", domain.CreateRequest{SKU: "A", Name: "x", Kind: domain.ProductKindRawMaterial}, domain.ErrInvalidUnit},
		{"bad kind", domain.CreateRequest{SKU: "A", Name: "x", Unit: "ea", Kind: "service"}, domain.ErrInvalidKind},
		{"bad reorder level", domain.CreateRequest{SKU: "A", Name: "x", Unit: "ea", Kind: domain.ProductKindRawMaterial, ReorderLevel: "-3"}, domain.ErrInvalidReorderLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGetProductErrors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-a-number")
	require.ErrorIs(t, err, domain.ErrInvalidID)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	_, err = svc.Get(ctx, node.Generate().String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListActiveOnly(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, domain.CreateRequest{SKU: "A", Name: "A", Unit: "ea", Kind: domain.ProductKindRawMaterial})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{SKU: "B", Name: "B", Unit: "ea", Kind: domain.ProductKindRawMaterial})
	require.NoError(t, err)

	impl := svc.(*Service)
	require.NoError(t, impl.db.Exec(`UPDATE products SET active = ? WHERE id = ?`, false, a.ID).Error)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "B", active[0].SKU)
}
