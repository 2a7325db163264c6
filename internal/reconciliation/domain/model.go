package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RunStatus is the reconciliation run state machine:
// running -> completed (happy path) or running -> failed. Both are terminal.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Classification is the per-SKU verdict of a comparison line.
type Classification string

const (
	ClassificationPass     Classification = "pass"
	ClassificationWarning  Classification = "warning"
	ClassificationCritical Classification = "critical"
)

type Run struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Number       string       `json:"number" gorm:"type:text;not null;uniqueIndex:ux_reconciliation_runs_number"`
	Channel      string       `json:"channel" gorm:"type:text;not null;index"`
	StoreID      string       `json:"store_id" gorm:"type:text"`
	Status       RunStatus    `json:"status" gorm:"type:text;not null;index"`
	TotalSkus    int          `json:"total_skus" gorm:"not null;default:0"`
	Passed       int          `json:"passed" gorm:"not null;default:0"`
	Warning      int          `json:"warning" gorm:"not null;default:0"`
	Critical     int          `json:"critical" gorm:"not null;default:0"`
	InitiatedBy  string       `json:"initiated_by" gorm:"type:text"`
	ErrorMessage string       `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt    time.Time    `json:"started_at" gorm:"not null"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

func (Run) TableName() string { return "reconciliation_runs" }

// Line is one per-SKU comparison record. Lines are immutable once written;
// lines from a failed run remain valid history.
type Line struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	RunID           snowflake.ID    `json:"run_id" gorm:"not null;index"`
	ProductID       snowflake.ID    `json:"product_id" gorm:"not null;index"`
	SKU             string          `json:"sku" gorm:"type:text;not null"`
	ErpQuantity     decimal.Decimal `json:"erp_quantity" gorm:"type:decimal(20,4);not null"`
	ChannelQuantity decimal.Decimal `json:"channel_quantity" gorm:"type:decimal(20,4);not null"`
	Delta           decimal.Decimal `json:"delta" gorm:"type:decimal(20,4);not null"`
	VariancePercent decimal.Decimal `json:"variance_percent" gorm:"type:decimal(20,4);not null"`
	Classification  Classification  `json:"classification" gorm:"type:text;not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
}

func (Line) TableName() string { return "reconciliation_lines" }

type RunRequest struct {
	Channel     string `json:"channel"`
	StoreID     string `json:"store_id,omitempty"`
	InitiatedBy string `json:"initiated_by,omitempty"`
}

// Summary is returned to the caller after a run reaches a terminal state.
type Summary struct {
	RunID     snowflake.ID `json:"run_id"`
	Number    string       `json:"number"`
	Status    RunStatus    `json:"status"`
	TotalSkus int          `json:"total_skus"`
	Passed    int          `json:"passed"`
	Warning   int          `json:"warning"`
	Critical  int          `json:"critical"`
}

type Service interface {
	Run(ctx context.Context, req RunRequest) (*Summary, error)
	GetRun(ctx context.Context, id snowflake.ID) (*Run, []Line, error)
}

type Repository interface {
	CreateRun(ctx context.Context, db *gorm.DB, run *Run) error
	SealRun(ctx context.Context, db *gorm.DB, run *Run) error
	InsertLine(ctx context.Context, db *gorm.DB, line *Line) error
	FindRun(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Run, error)
	FindLines(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]Line, error)
}

var (
	ErrInvalidChannel = errors.New("invalid_channel")
	ErrRunNotFound    = errors.New("run_not_found")
)
