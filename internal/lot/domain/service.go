package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Lot, error)
	// CreateTx creates a lot inside the caller's transaction. The allocation
	// engine uses it so production output lots and their opening receive
	// movement commit together.
	CreateTx(ctx context.Context, tx *gorm.DB, req CreateRequest) (*Lot, error)
	Get(ctx context.Context, id snowflake.ID) (*Lot, error)
	GetByCode(ctx context.Context, code string) (*Lot, error)
	TransitionStatus(ctx context.Context, id snowflake.ID, next LotStatus) (*Lot, error)
}

type CreateRequest struct {
	ProductID       snowflake.ID              `json:"product_id"`
	ProductKind     catalogdomain.ProductKind `json:"product_kind"`
	SourceType      LotSourceType             `json:"source_type"`
	SourceRef       string                    `json:"source_ref"`
	ManufactureDate *time.Time                `json:"manufacture_date,omitempty"`
	ExpirationDate  *time.Time                `json:"expiration_date,omitempty"`
}

var (
	ErrInvalidProduct    = errors.New("invalid_product")
	ErrInvalidKind       = errors.New("invalid_kind")
	ErrInvalidSourceType = errors.New("invalid_source_type")
	ErrInvalidSourceRef  = errors.New("invalid_source_ref")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrLotNotFound       = errors.New("lot_not_found")
)
