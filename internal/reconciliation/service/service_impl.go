package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	alertdomain "github.com/smallbiznis/lotline/internal/alert/domain"
	channeldomain "github.com/smallbiznis/lotline/internal/channel/domain"
	"github.com/smallbiznis/lotline/internal/clock"
	"github.com/smallbiznis/lotline/internal/config"
	obsmetrics "github.com/smallbiznis/lotline/internal/observability/metrics"
	"github.com/smallbiznis/lotline/internal/reconciliation/domain"
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
	ChannelRepo channeldomain.Repository
	Thresholds  *config.ReconciliationConfigHolder
	AlertSvc    alertdomain.Service `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	channelRepo channeldomain.Repository
	thresholds  *config.ReconciliationConfigHolder
	alertSvc    alertdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("reconciliation.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		channelRepo: p.ChannelRepo,
		thresholds:  p.Thresholds,
		alertSvc:    p.AlertSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

// Run compares ERP remaining quantities against channel-reported quantities
// for every allocation in scope. It reads a point-in-time snapshot and takes
// no locks: staleness against in-flight movements is an accepted property of
// a periodic diagnostic, not a correctness bug.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (*domain.Summary, error) {
	channelName := strings.TrimSpace(req.Channel)
	if channelName == "" {
		return nil, domain.ErrInvalidChannel
	}

	id := s.genID.Generate()
	run := &domain.Run{
		ID:          id,
		Number:      fmt.Sprintf("RECON-%s", id),
		Channel:     channelName,
		StoreID:     strings.TrimSpace(req.StoreID),
		Status:      domain.RunStatusRunning,
		InitiatedBy: strings.TrimSpace(req.InitiatedBy),
		StartedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateRun(ctx, s.db, run); err != nil {
		return nil, err
	}

	if err := s.evaluate(ctx, run); err != nil {
		// The failure is recorded on the run row instead of thrown past the
		// boundary; lines already written stay as valid history.
		now := s.clock.Now()
		run.Status = domain.RunStatusFailed
		run.ErrorMessage = err.Error()
		run.CompletedAt = &now
		if sealErr := s.repo.SealRun(ctx, s.db, run); sealErr != nil {
			s.log.Error("failed to seal failed reconciliation run", zap.Error(sealErr), zap.String("run", run.Number))
		}
		s.log.Error("reconciliation run failed", zap.Error(err), zap.String("run", run.Number))
		if s.obsMetrics != nil {
			s.obsMetrics.RecordReconciliationRun(string(domain.RunStatusFailed))
		}
		return s.summary(run), nil
	}

	now := s.clock.Now()
	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &now
	if err := s.repo.SealRun(ctx, s.db, run); err != nil {
		return nil, err
	}

	s.log.Info("reconciliation run completed",
		zap.String("run", run.Number),
		zap.String("channel", run.Channel),
		zap.Int("total_skus", run.TotalSkus),
		zap.Int("passed", run.Passed),
		zap.Int("warning", run.Warning),
		zap.Int("critical", run.Critical),
	)
	if s.obsMetrics != nil {
		s.obsMetrics.RecordReconciliationRun(string(domain.RunStatusCompleted))
	}

	if run.Critical > 0 && s.alertSvc != nil {
		_, err := s.alertSvc.Raise(ctx, alertdomain.RaiseRequest{
			Severity:      alertdomain.AlertSeverityCritical,
			Source:        "reconciliation",
			Message:       fmt.Sprintf("reconciliation run %s found %d critical SKU variance(s) on channel %s", run.Number, run.Critical, run.Channel),
			ReferenceType: "reconciliation_run",
			ReferenceID:   run.ID.String(),
		})
		if err != nil {
			s.log.Warn("failed to raise reconciliation alert", zap.Error(err), zap.String("run", run.Number))
		}
	}

	return s.summary(run), nil
}

func (s *Service) evaluate(ctx context.Context, run *domain.Run) error {
	allocations, err := s.channelRepo.FindScope(ctx, s.db, run.Channel, run.StoreID)
	if err != nil {
		return err
	}

	thresholds := s.currentThresholds()
	for _, allocation := range allocations {
		erpQty := allocation.RemainingQuantity
		channelQty := decimal.Zero
		if allocation.ChannelReportedQty != nil {
			channelQty = *allocation.ChannelReportedQty
		}

		delta, variancePercent, classification := domain.Compare(erpQty, channelQty, thresholds)

		line := &domain.Line{
			ID:              s.genID.Generate(),
			RunID:           run.ID,
			ProductID:       allocation.ProductID,
			SKU:             allocation.SKU,
			ErpQuantity:     erpQty,
			ChannelQuantity: channelQty,
			Delta:           delta,
			VariancePercent: variancePercent,
			Classification:  classification,
			CreatedAt:       s.clock.Now(),
		}
		if err := s.repo.InsertLine(ctx, s.db, line); err != nil {
			return err
		}

		run.TotalSkus++
		switch classification {
		case domain.ClassificationPass:
			run.Passed++
		case domain.ClassificationWarning:
			run.Warning++
		case domain.ClassificationCritical:
			run.Critical++
		}
	}
	return nil
}

func (s *Service) GetRun(ctx context.Context, id snowflake.ID) (*domain.Run, []domain.Line, error) {
	run, err := s.repo.FindRun(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, domain.ErrRunNotFound
	}
	lines, err := s.repo.FindLines(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return run, lines, nil
}

func (s *Service) currentThresholds() domain.Thresholds {
	cfg := config.DefaultReconciliationConfig()
	if s.thresholds != nil {
		cfg = s.thresholds.Get()
	}
	return domain.Thresholds{
		AbsoluteUnitFloor:       decimal.NewFromFloat(cfg.AbsoluteUnitFloor),
		PassVariancePercent:     decimal.NewFromFloat(cfg.PassVariancePercent),
		CriticalVariancePercent: decimal.NewFromFloat(cfg.CriticalVariancePercent),
	}
}

func (s *Service) summary(run *domain.Run) *domain.Summary {
	return &domain.Summary{
		RunID:     run.ID,
		Number:    run.Number,
		Status:    run.Status,
		TotalSkus: run.TotalSkus,
		Passed:    run.Passed,
		Warning:   run.Warning,
		Critical:  run.Critical,
	}
}
