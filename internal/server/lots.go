package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	lotdomain "github.com/smallbiznis/lotline/internal/lot/domain"
)

type createLotRequest struct {
	ProductID       string     `json:"product_id"`
	ProductKind     string     `json:"product_kind"`
	SourceType      string     `json:"source_type"`
	SourceRef       string     `json:"source_ref"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
}

func (s *Server) CreateLot(c *gin.Context) {
	var req createLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	productID, ok := parseID(req.ProductID)
	if !ok {
		AbortWithError(c, lotdomain.ErrInvalidProduct)
		return
	}

	resp, err := s.lotSvc.Create(c.Request.Context(), lotdomain.CreateRequest{
		ProductID:       productID,
		ProductKind:     catalogdomain.ProductKind(strings.TrimSpace(req.ProductKind)),
		SourceType:      lotdomain.LotSourceType(strings.TrimSpace(req.SourceType)),
		SourceRef:       strings.TrimSpace(req.SourceRef),
		ManufactureDate: req.ManufactureDate,
		ExpirationDate:  req.ExpirationDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetLot(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))

	if id, ok := parseID(raw); ok {
		resp, err := s.lotSvc.Get(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	// Fall back to lookup by lot code so both identifiers resolve.
	resp, err := s.lotSvc.GetByCode(c.Request.Context(), raw)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transitionLotRequest struct {
	Status string `json:"status"`
}

func (s *Server) TransitionLotStatus(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		AbortWithError(c, lotdomain.ErrLotNotFound)
		return
	}

	var req transitionLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.lotSvc.TransitionStatus(c.Request.Context(), id, lotdomain.LotStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
