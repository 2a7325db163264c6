package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotline/internal/warehouse/domain"
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
		log:   p.Log.Named("warehouse.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Warehouse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCodeExists
	}

	now := time.Now().UTC()
	w := &domain.Warehouse{
		ID:        s.genID.Generate(),
		Code:      code,
		Name:      name,
		Status:    domain.WarehouseStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, w); err != nil {
		// Concurrent create with the same code loses the insert race.
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}
	return w, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Warehouse, error) {
	warehouseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, warehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Warehouse, error) {
	return s.repo.FindAll(ctx, s.db)
}
