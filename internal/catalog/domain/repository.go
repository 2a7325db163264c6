package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*Product, error)
	FindAll(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Product, error)
}
