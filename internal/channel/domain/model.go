package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChannelAllocation is the per (product, channel, store) view of how much
// inventory is earmarked for a sales channel. Rows are maintained by channel
// sync jobs and read by the reconciliation engine.
type ChannelAllocation struct {
	ID                 snowflake.ID     `json:"id" gorm:"primaryKey"`
	ProductID          snowflake.ID     `json:"product_id" gorm:"not null;uniqueIndex:ux_channel_allocations_scope,priority:1"`
	SKU                string           `json:"sku" gorm:"type:text;not null;index"`
	Channel            string           `json:"channel" gorm:"type:text;not null;uniqueIndex:ux_channel_allocations_scope,priority:2"`
	StoreID            string           `json:"store_id" gorm:"type:text;not null;uniqueIndex:ux_channel_allocations_scope,priority:3"`
	AllocatedQuantity  decimal.Decimal  `json:"allocated_quantity" gorm:"type:decimal(20,4);not null"`
	RemainingQuantity  decimal.Decimal  `json:"remaining_quantity" gorm:"type:decimal(20,4);not null"`
	ChannelReportedQty *decimal.Decimal `json:"channel_reported_qty,omitempty" gorm:"type:decimal(20,4)"`
	LastSyncedAt       time.Time        `json:"last_synced_at" gorm:"not null"`
}

func (ChannelAllocation) TableName() string { return "channel_allocations" }

// SyncRequest is one row reported by a channel sync collaborator.
type SyncRequest struct {
	ProductID          snowflake.ID     `json:"product_id"`
	SKU                string           `json:"sku"`
	Channel            string           `json:"channel"`
	StoreID            string           `json:"store_id"`
	AllocatedQuantity  decimal.Decimal  `json:"allocated_quantity"`
	RemainingQuantity  decimal.Decimal  `json:"remaining_quantity"`
	ChannelReportedQty *decimal.Decimal `json:"channel_reported_qty,omitempty"`
}

type Service interface {
	UpsertFromSync(ctx context.Context, req SyncRequest) (*ChannelAllocation, error)
	ListScope(ctx context.Context, channel, storeID string) ([]ChannelAllocation, error)
}

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, allocation *ChannelAllocation) error
	FindScope(ctx context.Context, db *gorm.DB, channel, storeID string) ([]ChannelAllocation, error)
}

var (
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrInvalidChannel  = errors.New("invalid_channel")
	ErrInvalidQuantity = errors.New("invalid_quantity")
)
