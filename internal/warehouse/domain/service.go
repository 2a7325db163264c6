package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Warehouse, error)
	Get(ctx context.Context, id string) (*Warehouse, error)
	List(ctx context.Context) ([]Warehouse, error)
}

type CreateRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	ErrInvalidCode = errors.New("invalid_code")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
	ErrCodeExists  = errors.New("code_exists")
)
