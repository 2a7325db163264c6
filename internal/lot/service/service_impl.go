package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	"github.com/smallbiznis/lotline/internal/clock"
	"github.com/smallbiznis/lotline/internal/lot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("lot.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Lot, error) {
	return s.CreateTx(ctx, s.db, req)
}

func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, req domain.CreateRequest) (*domain.Lot, error) {
	if req.ProductID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if !req.ProductKind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	if !req.SourceType.Valid() {
		return nil, domain.ErrInvalidSourceType
	}
	sourceRef := strings.TrimSpace(req.SourceRef)
	if sourceRef == "" {
		return nil, domain.ErrInvalidSourceRef
	}

	product, err := s.catalogRepo.FindByID(ctx, tx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	l := &domain.Lot{
		ID:              id,
		Code:            fmt.Sprintf("LOT-%s", id),
		ProductID:       req.ProductID,
		ProductKind:     req.ProductKind,
		SourceType:      req.SourceType,
		SourceRef:       sourceRef,
		Status:          domain.LotStatusActive,
		ManufactureDate: req.ManufactureDate,
		ExpirationDate:  req.ExpirationDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, tx, l); err != nil {
		return nil, err
	}

	s.log.Info("lot created",
		zap.String("lot_code", l.Code),
		zap.String("product_id", l.ProductID.String()),
		zap.String("source_type", string(l.SourceType)),
	)
	return l, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Lot, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrLotNotFound
	}
	return item, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Lot, error) {
	item, err := s.repo.FindByCode(ctx, s.db, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrLotNotFound
	}
	return item, nil
}

func (s *Service) TransitionStatus(ctx context.Context, id snowflake.ID, next domain.LotStatus) (*domain.Lot, error) {
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrLotNotFound
	}

	if !item.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, s.db, id, next); err != nil {
		return nil, err
	}

	s.log.Info("lot status transitioned",
		zap.String("lot_code", item.Code),
		zap.String("from", string(item.Status)),
		zap.String("to", string(next)),
	)

	item.Status = next
	item.UpdatedAt = s.clock.Now()
	return item, nil
}
