package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/lotline/internal/catalog/domain"
	pkgdb "github.com/smallbiznis/lotline/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return nil, domain.ErrInvalidUnit
	}
	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}

	reorderLevel := decimal.Zero
	if raw := strings.TrimSpace(req.ReorderLevel); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			return nil, domain.ErrInvalidReorderLevel
		}
		reorderLevel = parsed
	}

	existing, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSKUExists
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:           s.genID.Generate(),
		SKU:          sku,
		Name:         name,
		Unit:         unit,
		Kind:         req.Kind,
		ReorderLevel: reorderLevel,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		// Concurrent create with the same SKU loses the insert race.
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSKUExists
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.repo.FindAll(ctx, s.db, activeOnly)
}
