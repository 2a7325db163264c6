package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotline/internal/alert/domain"
	"github.com/smallbiznis/lotline/internal/clock"
	obsmetrics "github.com/smallbiznis/lotline/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("alert.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Raise(ctx context.Context, req domain.RaiseRequest) (*domain.Alert, error) {
	if !req.Severity.Valid() {
		return nil, domain.ErrInvalidSeverity
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrInvalidMessage
	}

	a := &domain.Alert{
		ID:            s.genID.Generate(),
		Severity:      req.Severity,
		Source:        strings.TrimSpace(req.Source),
		Message:       message,
		ReferenceType: strings.TrimSpace(req.ReferenceType),
		ReferenceID:   strings.TrimSpace(req.ReferenceID),
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.Create(ctx, s.db, a); err != nil {
		return nil, err
	}

	s.log.Warn("alert raised",
		zap.String("severity", string(a.Severity)),
		zap.String("source", a.Source),
		zap.String("reference_type", a.ReferenceType),
		zap.String("reference_id", a.ReferenceID),
		zap.String("message", a.Message),
	)
	if s.obsMetrics != nil {
		s.obsMetrics.RecordAlert(string(a.Severity))
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, severity domain.AlertSeverity, limit int) ([]domain.Alert, error) {
	if severity != "" && !severity.Valid() {
		return nil, domain.ErrInvalidSeverity
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.FindRecent(ctx, s.db, severity, limit)
}
