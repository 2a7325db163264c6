package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotline/internal/lot/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, lot *domain.Lot) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO lots (id, code, product_id, product_kind, source_type, source_ref,
		                   status, manufacture_date, expiration_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lot.ID,
		lot.Code,
		lot.ProductID,
		lot.ProductKind,
		lot.SourceType,
		lot.SourceRef,
		lot.Status,
		lot.ManufactureDate,
		lot.ExpirationDate,
		lot.CreatedAt,
		lot.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Lot, error) {
	var l domain.Lot
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, product_id, product_kind, source_type, source_ref,
		        status, manufacture_date, expiration_date, created_at, updated_at
		 FROM lots WHERE id = ?`,
		id,
	).Scan(&l).Error
	if err != nil {
		return nil, err
	}
	if l.ID == 0 {
		return nil, nil
	}
	return &l, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Lot, error) {
	var l domain.Lot
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, product_id, product_kind, source_type, source_ref,
		        status, manufacture_date, expiration_date, created_at, updated_at
		 FROM lots WHERE code = ?`,
		code,
	).Scan(&l).Error
	if err != nil {
		return nil, err
	}
	if l.ID == 0 {
		return nil, nil
	}
	return &l, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.LotStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE lots SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC(),
		id,
	).Error
}
