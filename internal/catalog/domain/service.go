package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, activeOnly bool) ([]Product, error)
}

type CreateRequest struct {
	SKU          string      `json:"sku"`
	Name         string      `json:"name"`
	Unit         string      `json:"unit"`
	Kind         ProductKind `json:"kind"`
	ReorderLevel string      `json:"reorder_level"`
}

var (
	ErrInvalidSKU          = errors.New("invalid_sku")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidUnit         = errors.New("invalid_unit")
	ErrInvalidKind         = errors.New("invalid_kind")
	ErrInvalidReorderLevel = errors.New("invalid_reorder_level")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrSKUExists           = errors.New("sku_exists")
)
