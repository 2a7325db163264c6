package service

import (
	"context"

	"github.com/smallbiznis/lotline/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("ledger.service"),
		repo: p.Repo,
	}
}

func (s *Service) QueryHistory(ctx context.Context, filter domain.HistoryFilter, limit int) ([]domain.StockTransaction, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.Query(ctx, s.db, filter, limit)
}
