package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, lot *Lot) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Lot, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Lot, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status LotStatus) error
}
