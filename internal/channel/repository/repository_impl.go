package repository

import (
	"context"

	"github.com/smallbiznis/lotline/internal/channel/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, allocation *domain.ChannelAllocation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO channel_allocations (
			id, product_id, sku, channel, store_id,
			allocated_quantity, remaining_quantity, channel_reported_qty, last_synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (product_id, channel, store_id)
		DO UPDATE SET
			sku = EXCLUDED.sku,
			allocated_quantity = EXCLUDED.allocated_quantity,
			remaining_quantity = EXCLUDED.remaining_quantity,
			channel_reported_qty = EXCLUDED.channel_reported_qty,
			last_synced_at = EXCLUDED.last_synced_at`,
		allocation.ID,
		allocation.ProductID,
		allocation.SKU,
		allocation.Channel,
		allocation.StoreID,
		allocation.AllocatedQuantity,
		allocation.RemainingQuantity,
		allocation.ChannelReportedQty,
		allocation.LastSyncedAt,
	).Error
}

func (r *repo) FindScope(ctx context.Context, db *gorm.DB, channel, storeID string) ([]domain.ChannelAllocation, error) {
	var items []domain.ChannelAllocation
	stmt := db.WithContext(ctx).Model(&domain.ChannelAllocation{}).Where("channel = ?", channel)
	if storeID != "" {
		stmt = stmt.Where("store_id = ?", storeID)
	}
	if err := stmt.Order("sku ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
