package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	alertdomain "github.com/smallbiznis/lotline/internal/alert/domain"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	"github.com/smallbiznis/lotline/internal/clock"
	"github.com/smallbiznis/lotline/internal/inventory/domain"
	ledgerdomain "github.com/smallbiznis/lotline/internal/ledger/domain"
	lotdomain "github.com/smallbiznis/lotline/internal/lot/domain"
	obsmetrics "github.com/smallbiznis/lotline/internal/observability/metrics"
	warehousedomain "github.com/smallbiznis/lotline/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	BalanceRepo   balancedomain.Repository
	LedgerRepo    ledgerdomain.Repository
	LotRepo       lotdomain.Repository
	LotSvc        lotdomain.Service
	CatalogRepo   catalogdomain.Repository
	WarehouseRepo warehousedomain.Repository
	AlertSvc      alertdomain.Service `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	balanceRepo   balancedomain.Repository
	ledgerRepo    ledgerdomain.Repository
	lotRepo       lotdomain.Repository
	lotSvc        lotdomain.Service
	catalogRepo   catalogdomain.Repository
	warehouseRepo warehousedomain.Repository
	alertSvc      alertdomain.Service
	obsMetrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("inventory.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		balanceRepo:   p.BalanceRepo,
		ledgerRepo:    p.LedgerRepo,
		lotRepo:       p.LotRepo,
		lotSvc:        p.LotSvc,
		catalogRepo:   p.CatalogRepo,
		warehouseRepo: p.WarehouseRepo,
		alertSvc:      p.AlertSvc,
		obsMetrics:    p.ObsMetrics,
	}
}

func (s *Service) Receive(ctx context.Context, req domain.ReceiveRequest) (*domain.MovementResult, error) {
	if err := validateReceive(req); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	lot, err := s.lotRepo.FindByID(ctx, s.db, req.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, lotdomain.ErrLotNotFound
	}
	if lot.ProductID != req.ProductID {
		s.recordRejection(domain.ErrInvalidProduct)
		return nil, domain.ErrInvalidProduct
	}
	if err := s.requireWarehouse(ctx, req.WarehouseID); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	var result *domain.MovementResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.receiveTx(ctx, tx, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logMovement(result.Transaction)
	return result, nil
}

// receiveTx runs inside the caller's transaction so production output can
// commit the new lot and its opening movement atomically.
func (s *Service) receiveTx(ctx context.Context, tx *gorm.DB, req domain.ReceiveRequest) (*domain.MovementResult, error) {
	avail, err := s.lockBalance(ctx, tx, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusAvailable, req.Unit)
	if err != nil {
		return nil, err
	}

	prev := avail.Quantity
	next := prev.Add(req.Quantity)

	if err := s.writeBalance(ctx, tx, avail, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusAvailable, req.Unit, next); err != nil {
		return nil, err
	}

	entry := s.newEntry(req.LotID, req.ProductID, ledgerdomain.TypeReceive, req.Quantity, req.Unit, prev, next, req.ReferenceType, req.ReferenceID, req.PerformedBy, req.Reason)
	entry.ToWarehouseID = &req.WarehouseID
	toStatus := balancedomain.BalanceStatusAvailable
	entry.ToStatus = &toStatus

	if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	return &domain.MovementResult{Transaction: entry, PreviousBalance: prev, NewBalance: next}, nil
}

func (s *Service) Reserve(ctx context.Context, req domain.MovementRequest) (*domain.MovementResult, error) {
	if err := validateMovement(req); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	var result *domain.MovementResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock order invariant: available before reserved, so reserve and
		// release can never deadlock against each other.
		avail, err := s.balanceRepo.FindForUpdate(ctx, tx, req.LotID, req.WarehouseID, balancedomain.BalanceStatusAvailable)
		if err != nil {
			return err
		}
		availQty := decimal.Zero
		unit := ""
		if avail != nil {
			availQty = avail.Quantity
			unit = avail.Unit
		}
		if availQty.LessThan(req.Quantity) {
			return domain.ErrInsufficientAvailable
		}

		reserved, err := s.lockBalance(ctx, tx, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusReserved, unit)
		if err != nil {
			return err
		}
		reservedQty := reserved.Quantity

		newAvail := availQty.Sub(req.Quantity)
		newReserved := reservedQty.Add(req.Quantity)

		if err := s.writeBalance(ctx, tx, avail, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusAvailable, unit, newAvail); err != nil {
			return err
		}
		if err := s.writeBalance(ctx, tx, reserved, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusReserved, unit, newReserved); err != nil {
			return err
		}

		// Previous/new balance on the entry always track the source row of
		// the movement; for reserve that is the available row.
		entry := s.newEntry(req.LotID, req.ProductID, ledgerdomain.TypeReserve, req.Quantity, unit, availQty, newAvail, req.ReferenceType, req.ReferenceID, req.PerformedBy, req.Reason)
		s.stampStatusMove(entry, req.WarehouseID, balancedomain.BalanceStatusAvailable, balancedomain.BalanceStatusReserved)
		if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
			return err
		}

		result = &domain.MovementResult{Transaction: entry, PreviousBalance: availQty, NewBalance: newAvail}
		return nil
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	s.logMovement(result.Transaction)
	return result, nil
}

func (s *Service) Release(ctx context.Context, req domain.MovementRequest) (*domain.MovementResult, error) {
	if err := validateMovement(req); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	var result *domain.MovementResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Same lock order as reserve: available before reserved.
		avail, err := s.lockBalance(ctx, tx, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusAvailable, "")
		if err != nil {
			return err
		}
		reserved, err := s.balanceRepo.FindForUpdate(ctx, tx, req.LotID, req.WarehouseID, balancedomain.BalanceStatusReserved)
		if err != nil {
			return err
		}
		reservedQty := decimal.Zero
		unit := ""
		if reserved != nil {
			reservedQty = reserved.Quantity
			unit = reserved.Unit
		}
		if reservedQty.LessThan(req.Quantity) {
			return domain.ErrInsufficientReserved
		}

		availQty := avail.Quantity

		newReserved := reservedQty.Sub(req.Quantity)
		newAvail := availQty.Add(req.Quantity)

		if err := s.writeBalance(ctx, tx, avail, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusAvailable, unit, newAvail); err != nil {
			return err
		}
		if err := s.writeBalance(ctx, tx, reserved, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusReserved, unit, newReserved); err != nil {
			return err
		}

		entry := s.newEntry(req.LotID, req.ProductID, ledgerdomain.TypeRelease, req.Quantity, unit, reservedQty, newReserved, req.ReferenceType, req.ReferenceID, req.PerformedBy, req.Reason)
		s.stampStatusMove(entry, req.WarehouseID, balancedomain.BalanceStatusReserved, balancedomain.BalanceStatusAvailable)
		if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
			return err
		}

		result = &domain.MovementResult{Transaction: entry, PreviousBalance: reservedQty, NewBalance: newReserved}
		return nil
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	s.logMovement(result.Transaction)
	return result, nil
}

func (s *Service) Ship(ctx context.Context, req domain.MovementRequest) (*domain.MovementResult, error) {
	if err := validateMovement(req); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	var result *domain.MovementResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reserved, err := s.balanceRepo.FindForUpdate(ctx, tx, req.LotID, req.WarehouseID, balancedomain.BalanceStatusReserved)
		if err != nil {
			return err
		}
		reservedQty := decimal.Zero
		unit := ""
		if reserved != nil {
			reservedQty = reserved.Quantity
			unit = reserved.Unit
		}
		// Only committed stock leaves the warehouse.
		if reservedQty.LessThan(req.Quantity) {
			return domain.ErrInsufficientReserved
		}

		newReserved := reservedQty.Sub(req.Quantity)
		if err := s.writeBalance(ctx, tx, reserved, req.LotID, req.ProductID, req.WarehouseID, balancedomain.BalanceStatusReserved, unit, newReserved); err != nil {
			return err
		}

		entry := s.newEntry(req.LotID, req.ProductID, ledgerdomain.TypeShip, req.Quantity, unit, reservedQty, newReserved, req.ReferenceType, req.ReferenceID, req.PerformedBy, req.Reason)
		entry.FromWarehouseID = &req.WarehouseID
		fromStatus := balancedomain.BalanceStatusReserved
		entry.FromStatus = &fromStatus
		if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
			return err
		}

		result = &domain.MovementResult{Transaction: entry, PreviousBalance: reservedQty, NewBalance: newReserved}
		return nil
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	s.logMovement(result.Transaction)
	return result, nil
}

func (s *Service) ProduceOutput(ctx context.Context, req domain.ProductionRequest) (*domain.ProductionResult, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		s.recordRejection(domain.ErrInvalidQuantity)
		return nil, domain.ErrInvalidQuantity
	}
	workOrderRef := strings.TrimSpace(req.WorkOrderRef)
	if workOrderRef == "" {
		s.recordRejection(domain.ErrInvalidReference)
		return nil, domain.ErrInvalidReference
	}

	product, err := s.catalogRepo.FindByID(ctx, s.db, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		s.recordRejection(domain.ErrInvalidProduct)
		return nil, domain.ErrInvalidProduct
	}
	if err := s.requireWarehouse(ctx, req.WarehouseID); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	var produced *domain.ProductionResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newLot, err := s.lotSvc.CreateTx(ctx, tx, lotdomain.CreateRequest{
			ProductID:       req.ProductID,
			ProductKind:     product.Kind,
			SourceType:      lotdomain.LotSourceProduction,
			SourceRef:       workOrderRef,
			ManufactureDate: req.ManufactureDate,
			ExpirationDate:  req.ExpirationDate,
		})
		if err != nil {
			return err
		}

		movement, err := s.receiveTx(ctx, tx, domain.ReceiveRequest{
			LotID:         newLot.ID,
			ProductID:     req.ProductID,
			WarehouseID:   req.WarehouseID,
			Quantity:      req.Quantity,
			Unit:          product.Unit,
			ReferenceType: "work_order",
			ReferenceID:   workOrderRef,
			PerformedBy:   req.PerformedBy,
		})
		if err != nil {
			return err
		}

		produced = &domain.ProductionResult{Lot: newLot, Movement: movement}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logMovement(produced.Movement.Transaction)
	return produced, nil
}

func (s *Service) GetBalance(ctx context.Context, lotID, warehouseID snowflake.ID, status balancedomain.BalanceStatus) (decimal.Decimal, error) {
	if !status.Valid() {
		return decimal.Zero, balancedomain.ErrInvalidStatus
	}
	row, err := s.balanceRepo.Find(ctx, s.db, lotID, warehouseID, status)
	if err != nil {
		return decimal.Zero, err
	}
	if row == nil {
		return decimal.Zero, nil
	}
	return row.Quantity, nil
}

func (s *Service) BalanceBreakdown(ctx context.Context, lotID, warehouseID snowflake.ID) (map[balancedomain.BalanceStatus]decimal.Decimal, error) {
	return s.balanceRepo.SumByLotWarehouse(ctx, s.db, lotID, warehouseID)
}

func (s *Service) AvailabilityByProduct(ctx context.Context, productID snowflake.ID) (*balancedomain.ProductAvailability, error) {
	return s.balanceRepo.SumByProduct(ctx, s.db, productID)
}

func (s *Service) CheckLowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	products, err := s.catalogRepo.FindAll(ctx, s.db, true)
	if err != nil {
		return nil, err
	}

	var low []domain.LowStockItem
	for _, product := range products {
		if product.ReorderLevel.LessThanOrEqual(decimal.Zero) {
			continue
		}
		availability, err := s.balanceRepo.SumByProduct(ctx, s.db, product.ID)
		if err != nil {
			return nil, err
		}
		if availability.Available.GreaterThanOrEqual(product.ReorderLevel) {
			continue
		}

		item := domain.LowStockItem{
			ProductID:    product.ID,
			SKU:          product.SKU,
			Available:    availability.Available,
			ReorderLevel: product.ReorderLevel,
		}
		low = append(low, item)

		if s.alertSvc != nil {
			_, alertErr := s.alertSvc.Raise(ctx, alertdomain.RaiseRequest{
				Severity:      alertdomain.AlertSeverityWarning,
				Source:        "inventory.low_stock",
				Message:       fmt.Sprintf("available stock %s below reorder level %s for %s", item.Available, item.ReorderLevel, item.SKU),
				ReferenceType: "product",
				ReferenceID:   product.ID.String(),
			})
			if alertErr != nil {
				s.log.Warn("failed to raise low stock alert", zap.Error(alertErr), zap.String("sku", item.SKU))
			}
		}
	}
	return low, nil
}

// lockBalance returns the balance row locked for the duration of the
// transaction, seeding a zero row first when none exists. A SELECT FOR UPDATE
// matching zero rows locks nothing, so two transactions could otherwise both
// see an absent row, both compute from zero, and the later commit overwrite
// the earlier one.
func (s *Service) lockBalance(ctx context.Context, tx *gorm.DB, lotID, productID, warehouseID snowflake.ID, status balancedomain.BalanceStatus, unit string) (*balancedomain.Balance, error) {
	row, err := s.balanceRepo.FindForUpdate(ctx, tx, lotID, warehouseID, status)
	if err != nil || row != nil {
		return row, err
	}

	seed := &balancedomain.Balance{
		ID:          s.genID.Generate(),
		LotID:       lotID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Status:      status,
		Quantity:    decimal.Zero,
		Unit:        unit,
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.balanceRepo.CreateIfAbsent(ctx, tx, seed); err != nil {
		return nil, err
	}

	// If a concurrent transaction inserted the row first, this read blocks on
	// its row lock and returns the committed quantity.
	return s.balanceRepo.FindForUpdate(ctx, tx, lotID, warehouseID, status)
}

func (s *Service) writeBalance(ctx context.Context, tx *gorm.DB, existing *balancedomain.Balance, lotID, productID, warehouseID snowflake.ID, status balancedomain.BalanceStatus, unit string, quantity decimal.Decimal) error {
	row := &balancedomain.Balance{
		LotID:       lotID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Status:      status,
		Quantity:    quantity,
		Unit:        unit,
		UpdatedAt:   s.clock.Now(),
	}
	if existing != nil {
		row.ID = existing.ID
		if row.Unit == "" {
			row.Unit = existing.Unit
		}
	} else {
		row.ID = s.genID.Generate()
	}
	return s.balanceRepo.Upsert(ctx, tx, row)
}

func (s *Service) newEntry(lotID, productID snowflake.ID, movementType ledgerdomain.TransactionType, quantity decimal.Decimal, unit string, prev, next decimal.Decimal, referenceType, referenceID, performedBy, reason string) *ledgerdomain.StockTransaction {
	id := s.genID.Generate()
	return &ledgerdomain.StockTransaction{
		ID:              id,
		Number:          fmt.Sprintf("STK-%s", id),
		Type:            movementType,
		LotID:           lotID,
		ProductID:       productID,
		Quantity:        quantity,
		Unit:            unit,
		PreviousBalance: prev,
		NewBalance:      next,
		ReferenceType:   strings.TrimSpace(referenceType),
		ReferenceID:     strings.TrimSpace(referenceID),
		PerformedBy:     strings.TrimSpace(performedBy),
		Reason:          strings.TrimSpace(reason),
		CorrelationID:   uuid.NewString(),
		CreatedAt:       s.clock.Now(),
	}
}

func (s *Service) stampStatusMove(entry *ledgerdomain.StockTransaction, warehouseID snowflake.ID, from, to balancedomain.BalanceStatus) {
	wh := warehouseID
	entry.FromWarehouseID = &wh
	entry.ToWarehouseID = &wh
	fromStatus := from
	toStatus := to
	entry.FromStatus = &fromStatus
	entry.ToStatus = &toStatus
}

func (s *Service) requireWarehouse(ctx context.Context, warehouseID snowflake.ID) error {
	warehouse, err := s.warehouseRepo.FindByID(ctx, s.db, warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return domain.ErrInvalidWarehouse
	}
	return nil
}

func (s *Service) logMovement(entry *ledgerdomain.StockTransaction) {
	s.log.Info("stock movement",
		zap.String("number", entry.Number),
		zap.String("type", string(entry.Type)),
		zap.String("lot_id", entry.LotID.String()),
		zap.String("quantity", entry.Quantity.String()),
		zap.String("reference_type", entry.ReferenceType),
		zap.String("reference_id", entry.ReferenceID),
	)
	if s.obsMetrics != nil {
		s.obsMetrics.RecordMovement(string(entry.Type))
	}
}

func (s *Service) recordRejection(err error) {
	if s.obsMetrics == nil || err == nil {
		return
	}
	switch err {
	case domain.ErrInsufficientAvailable, domain.ErrInsufficientReserved,
		domain.ErrInvalidQuantity, domain.ErrInvalidUnit,
		domain.ErrInvalidWarehouse, domain.ErrInvalidProduct,
		domain.ErrInvalidReference:
		s.obsMetrics.RecordMovementRejection(err.Error())
	}
}

func validateMovement(req domain.MovementRequest) error {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if strings.TrimSpace(req.ReferenceType) == "" || strings.TrimSpace(req.ReferenceID) == "" {
		return domain.ErrInvalidReference
	}
	return nil
}

func validateReceive(req domain.ReceiveRequest) error {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if strings.TrimSpace(req.Unit) == "" {
		return domain.ErrInvalidUnit
	}
	if strings.TrimSpace(req.ReferenceType) == "" || strings.TrimSpace(req.ReferenceID) == "" {
		return domain.ErrInvalidReference
	}
	return nil
}
