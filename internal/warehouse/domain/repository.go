package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, warehouse *Warehouse) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Warehouse, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Warehouse, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Warehouse, error)
}
