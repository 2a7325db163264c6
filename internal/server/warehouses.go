package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	warehousedomain "github.com/smallbiznis/lotline/internal/warehouse/domain"
)

type createWarehouseRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) CreateWarehouse(c *gin.Context) {
	var req createWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.warehouseSvc.Create(c.Request.Context(), warehousedomain.CreateRequest{
		Code: strings.TrimSpace(req.Code),
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListWarehouses(c *gin.Context) {
	resp, err := s.warehouseSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWarehouse(c *gin.Context) {
	resp, err := s.warehouseSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
