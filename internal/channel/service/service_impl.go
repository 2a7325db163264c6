package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotline/internal/channel/domain"
	"github.com/smallbiznis/lotline/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("channel.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) UpsertFromSync(ctx context.Context, req domain.SyncRequest) (*domain.ChannelAllocation, error) {
	if req.ProductID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		return nil, domain.ErrInvalidChannel
	}
	if req.AllocatedQuantity.IsNegative() || req.RemainingQuantity.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	if req.ChannelReportedQty != nil && req.ChannelReportedQty.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}

	allocation := &domain.ChannelAllocation{
		ID:                 s.genID.Generate(),
		ProductID:          req.ProductID,
		SKU:                strings.TrimSpace(req.SKU),
		Channel:            channel,
		StoreID:            strings.TrimSpace(req.StoreID),
		AllocatedQuantity:  req.AllocatedQuantity,
		RemainingQuantity:  req.RemainingQuantity,
		ChannelReportedQty: req.ChannelReportedQty,
		LastSyncedAt:       s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, s.db, allocation); err != nil {
		return nil, err
	}
	return allocation, nil
}

func (s *Service) ListScope(ctx context.Context, channel, storeID string) ([]domain.ChannelAllocation, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, domain.ErrInvalidChannel
	}
	return s.repo.FindScope(ctx, s.db, channel, strings.TrimSpace(storeID))
}
