package repository

import (
	"context"

	"github.com/smallbiznis/lotline/internal/alert/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, alert *domain.Alert) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO alerts (id, severity, source, message, reference_type, reference_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		alert.ID,
		alert.Severity,
		alert.Source,
		alert.Message,
		alert.ReferenceType,
		alert.ReferenceID,
		alert.CreatedAt,
	).Error
}

func (r *repo) FindRecent(ctx context.Context, db *gorm.DB, severity domain.AlertSeverity, limit int) ([]domain.Alert, error) {
	var items []domain.Alert
	stmt := db.WithContext(ctx).Model(&domain.Alert{})
	if severity != "" {
		stmt = stmt.Where("severity = ?", severity)
	}
	err := stmt.Order("created_at DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
