package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotline/internal/warehouse/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, warehouse *domain.Warehouse) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO warehouses (id, code, name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		warehouse.ID,
		warehouse.Code,
		warehouse.Name,
		warehouse.Status,
		warehouse.CreatedAt,
		warehouse.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Warehouse, error) {
	var w domain.Warehouse
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, status, created_at, updated_at
		 FROM warehouses WHERE id = ?`,
		id,
	).Scan(&w).Error
	if err != nil {
		return nil, err
	}
	if w.ID == 0 {
		return nil, nil
	}
	return &w, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Warehouse, error) {
	var w domain.Warehouse
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, status, created_at, updated_at
		 FROM warehouses WHERE code = ?`,
		code,
	).Scan(&w).Error
	if err != nil {
		return nil, err
	}
	if w.ID == 0 {
		return nil, nil
	}
	return &w, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Warehouse, error) {
	var items []domain.Warehouse
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, status, created_at, updated_at
		 FROM warehouses ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
