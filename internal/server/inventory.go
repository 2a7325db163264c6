package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
	inventorydomain "github.com/smallbiznis/lotline/internal/inventory/domain"
	ledgerdomain "github.com/smallbiznis/lotline/internal/ledger/domain"
)

type movementRequest struct {
	LotID         string `json:"lot_id"`
	ProductID     string `json:"product_id"`
	WarehouseID   string `json:"warehouse_id"`
	Quantity      string `json:"quantity"`
	Unit          string `json:"unit,omitempty"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
	PerformedBy   string `json:"performed_by,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

func (r movementRequest) toDomain() (inventorydomain.MovementRequest, error) {
	lotID, ok := parseID(r.LotID)
	if !ok {
		return inventorydomain.MovementRequest{}, ErrInvalidRequest
	}
	productID, ok := parseID(r.ProductID)
	if !ok {
		return inventorydomain.MovementRequest{}, ErrInvalidRequest
	}
	warehouseID, ok := parseID(r.WarehouseID)
	if !ok {
		return inventorydomain.MovementRequest{}, inventorydomain.ErrInvalidWarehouse
	}
	qty, ok := parseQuantity(r.Quantity)
	if !ok {
		return inventorydomain.MovementRequest{}, inventorydomain.ErrInvalidQuantity
	}
	return inventorydomain.MovementRequest{
		LotID:         lotID,
		ProductID:     productID,
		WarehouseID:   warehouseID,
		Quantity:      qty,
		ReferenceType: strings.TrimSpace(r.ReferenceType),
		ReferenceID:   strings.TrimSpace(r.ReferenceID),
		PerformedBy:   strings.TrimSpace(r.PerformedBy),
		Reason:        strings.TrimSpace(r.Reason),
	}, nil
}

func (s *Server) Receive(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	mv, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.inventorySvc.Receive(c.Request.Context(), inventorydomain.ReceiveRequest{
		LotID:         mv.LotID,
		ProductID:     mv.ProductID,
		WarehouseID:   mv.WarehouseID,
		Quantity:      mv.Quantity,
		Unit:          strings.TrimSpace(req.Unit),
		ReferenceType: mv.ReferenceType,
		ReferenceID:   mv.ReferenceID,
		PerformedBy:   mv.PerformedBy,
		Reason:        mv.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Reserve(c *gin.Context) {
	s.movement(c, s.inventorySvc.Reserve)
}

func (s *Server) Release(c *gin.Context) {
	s.movement(c, s.inventorySvc.Release)
}

func (s *Server) Ship(c *gin.Context) {
	s.movement(c, s.inventorySvc.Ship)
}

func (s *Server) movement(c *gin.Context, op func(ctx context.Context, req inventorydomain.MovementRequest) (*inventorydomain.MovementResult, error)) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	mv, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := op(c.Request.Context(), mv)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type productionOutputRequest struct {
	ProductID       string     `json:"product_id"`
	WarehouseID     string     `json:"warehouse_id"`
	Quantity        string     `json:"quantity"`
	WorkOrderRef    string     `json:"work_order_ref"`
	PerformedBy     string     `json:"performed_by,omitempty"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
}

func (s *Server) ProduceOutput(c *gin.Context) {
	var req productionOutputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	productID, ok := parseID(req.ProductID)
	if !ok {
		AbortWithError(c, inventorydomain.ErrInvalidProduct)
		return
	}
	warehouseID, ok := parseID(req.WarehouseID)
	if !ok {
		AbortWithError(c, inventorydomain.ErrInvalidWarehouse)
		return
	}
	qty, ok := parseQuantity(req.Quantity)
	if !ok {
		AbortWithError(c, inventorydomain.ErrInvalidQuantity)
		return
	}

	resp, err := s.inventorySvc.ProduceOutput(c.Request.Context(), inventorydomain.ProductionRequest{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		Quantity:        qty,
		WorkOrderRef:    strings.TrimSpace(req.WorkOrderRef),
		PerformedBy:     strings.TrimSpace(req.PerformedBy),
		ManufactureDate: req.ManufactureDate,
		ExpirationDate:  req.ExpirationDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetBalance(c *gin.Context) {
	lotID, ok := parseID(c.Query("lot_id"))
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	warehouseID, ok := parseID(c.Query("warehouse_id"))
	if !ok {
		AbortWithError(c, inventorydomain.ErrInvalidWarehouse)
		return
	}

	rawStatus := strings.TrimSpace(c.DefaultQuery("status", string(balancedomain.BalanceStatusAvailable)))
	if rawStatus == "all" {
		breakdown, err := s.inventorySvc.BalanceBreakdown(c.Request.Context(), lotID, warehouseID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"lot_id":       lotID,
			"warehouse_id": warehouseID,
			"balances":     breakdown,
		}})
		return
	}

	status := balancedomain.BalanceStatus(rawStatus)
	if !status.Valid() {
		AbortWithError(c, balancedomain.ErrInvalidStatus)
		return
	}

	qty, err := s.inventorySvc.GetBalance(c.Request.Context(), lotID, warehouseID, status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"lot_id":       lotID,
		"warehouse_id": warehouseID,
		"status":       status,
		"quantity":     qty,
	}})
}

func (s *Server) GetAvailability(c *gin.Context) {
	productID, ok := parseID(c.Param("product_id"))
	if !ok {
		AbortWithError(c, inventorydomain.ErrInvalidProduct)
		return
	}

	resp, err := s.inventorySvc.AvailabilityByProduct(c.Request.Context(), productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetHistory(c *gin.Context) {
	productID, ok := parseOptionalID(c.Query("product_id"))
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	lotID, ok := parseOptionalID(c.Query("lot_id"))
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	warehouseID, ok := parseOptionalID(c.Query("warehouse_id"))
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	limit, ok := parseOptionalInt(c.Query("limit"), 0)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	filter := ledgerdomain.HistoryFilter{
		ProductID:   productID,
		LotID:       lotID,
		WarehouseID: warehouseID,
		Type:        ledgerdomain.TransactionType(strings.TrimSpace(c.Query("type"))),
	}

	resp, err := s.ledgerSvc.QueryHistory(c.Request.Context(), filter, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLowStock(c *gin.Context) {
	resp, err := s.inventorySvc.CheckLowStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
