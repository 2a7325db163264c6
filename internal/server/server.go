package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	alertdomain "github.com/smallbiznis/lotline/internal/alert/domain"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	channeldomain "github.com/smallbiznis/lotline/internal/channel/domain"
	"github.com/smallbiznis/lotline/internal/config"
	inventorydomain "github.com/smallbiznis/lotline/internal/inventory/domain"
	ledgerdomain "github.com/smallbiznis/lotline/internal/ledger/domain"
	lotdomain "github.com/smallbiznis/lotline/internal/lot/domain"
	obslogger "github.com/smallbiznis/lotline/internal/observability/logger"
	recondomain "github.com/smallbiznis/lotline/internal/reconciliation/domain"
	warehousedomain "github.com/smallbiznis/lotline/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	catalogSvc   catalogdomain.Service
	warehouseSvc warehousedomain.Service
	lotSvc       lotdomain.Service
	inventorySvc inventorydomain.Service
	ledgerSvc    ledgerdomain.Service
	channelSvc   channeldomain.Service
	reconSvc     recondomain.Service
	alertSvc     alertdomain.Service
}

type ServerParams struct {
	fx.In

	Engine       *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	CatalogSvc   catalogdomain.Service
	WarehouseSvc warehousedomain.Service
	LotSvc       lotdomain.Service
	InventorySvc inventorydomain.Service
	LedgerSvc    ledgerdomain.Service
	ChannelSvc   channeldomain.Service
	ReconSvc     recondomain.Service
	AlertSvc     alertdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Engine,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		catalogSvc:   p.CatalogSvc,
		warehouseSvc: p.WarehouseSvc,
		lotSvc:       p.LotSvc,
		inventorySvc: p.InventorySvc,
		ledgerSvc:    p.LedgerSvc,
		channelSvc:   p.ChannelSvc,
		reconSvc:     p.ReconSvc,
		alertSvc:     p.AlertSvc,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	api.POST("/products", s.CreateProduct)
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)

	api.POST("/warehouses", s.CreateWarehouse)
	api.GET("/warehouses", s.ListWarehouses)
	api.GET("/warehouses/:id", s.GetWarehouse)

	api.POST("/lots", s.CreateLot)
	api.GET("/lots/:id", s.GetLot)
	api.POST("/lots/:id/status", s.TransitionLotStatus)

	api.POST("/inventory/receive", s.Receive)
	api.POST("/inventory/reserve", s.Reserve)
	api.POST("/inventory/release", s.Release)
	api.POST("/inventory/ship", s.Ship)
	api.POST("/inventory/production-output", s.ProduceOutput)

	api.GET("/inventory/balances", s.GetBalance)
	api.GET("/inventory/availability/:product_id", s.GetAvailability)
	api.GET("/inventory/history", s.GetHistory)
	api.GET("/inventory/low-stock", s.GetLowStock)

	api.POST("/channels/sync", s.SyncChannelAllocation)
	api.GET("/channels/allocations", s.ListChannelAllocations)

	api.POST("/reconciliation/runs", s.RunReconciliation)
	api.GET("/reconciliation/runs/:id", s.GetReconciliationRun)

	api.GET("/alerts", s.ListAlerts)
}
