package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotline/internal/reconciliation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateRun(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reconciliation_runs (
			id, number, channel, store_id, status,
			total_skus, passed, warning, critical,
			initiated_by, error_message, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Number,
		run.Channel,
		run.StoreID,
		run.Status,
		run.TotalSkus,
		run.Passed,
		run.Warning,
		run.Critical,
		run.InitiatedBy,
		run.ErrorMessage,
		run.StartedAt,
		run.CompletedAt,
	).Error
}

// SealRun moves a run to its terminal state; the only update the runs table
// ever sees.
func (r *repo) SealRun(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	return db.WithContext(ctx).Exec(
		`UPDATE reconciliation_runs
		 SET status = ?, total_skus = ?, passed = ?, warning = ?, critical = ?,
		     error_message = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		run.Status,
		run.TotalSkus,
		run.Passed,
		run.Warning,
		run.Critical,
		run.ErrorMessage,
		run.CompletedAt,
		run.ID,
		domain.RunStatusRunning,
	).Error
}

func (r *repo) InsertLine(ctx context.Context, db *gorm.DB, line *domain.Line) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reconciliation_lines (
			id, run_id, product_id, sku,
			erp_quantity, channel_quantity, delta, variance_percent,
			classification, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		line.ID,
		line.RunID,
		line.ProductID,
		line.SKU,
		line.ErpQuantity,
		line.ChannelQuantity,
		line.Delta,
		line.VariancePercent,
		line.Classification,
		line.CreatedAt,
	).Error
}

func (r *repo) FindRun(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Run, error) {
	var run domain.Run
	err := db.WithContext(ctx).Raw(
		`SELECT id, number, channel, store_id, status,
		        total_skus, passed, warning, critical,
		        initiated_by, error_message, started_at, completed_at
		 FROM reconciliation_runs WHERE id = ?`,
		id,
	).Scan(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, nil
	}
	return &run, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]domain.Line, error) {
	var lines []domain.Line
	err := db.WithContext(ctx).Raw(
		`SELECT id, run_id, product_id, sku,
		        erp_quantity, channel_quantity, delta, variance_percent,
		        classification, created_at
		 FROM reconciliation_lines WHERE run_id = ? ORDER BY sku ASC`,
		runID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
