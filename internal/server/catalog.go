package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
)

type createProductRequest struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	Kind         string `json:"kind"`
	ReorderLevel string `json:"reorder_level"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateRequest{
		SKU:          strings.TrimSpace(req.SKU),
		Name:         strings.TrimSpace(req.Name),
		Unit:         strings.TrimSpace(req.Unit),
		Kind:         catalogdomain.ProductKind(strings.TrimSpace(req.Kind)),
		ReorderLevel: strings.TrimSpace(req.ReorderLevel),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	activeOnly := strings.EqualFold(c.Query("active"), "true")

	resp, err := s.catalogSvc.List(c.Request.Context(), activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.catalogSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
