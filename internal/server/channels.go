package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	channeldomain "github.com/smallbiznis/lotline/internal/channel/domain"
)

type channelSyncRequest struct {
	ProductID          string  `json:"product_id"`
	SKU                string  `json:"sku"`
	Channel            string  `json:"channel"`
	StoreID            string  `json:"store_id"`
	AllocatedQuantity  string  `json:"allocated_quantity"`
	RemainingQuantity  string  `json:"remaining_quantity"`
	ChannelReportedQty *string `json:"channel_reported_qty,omitempty"`
}

func (s *Server) SyncChannelAllocation(c *gin.Context) {
	var req channelSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	productID, ok := parseID(req.ProductID)
	if !ok {
		AbortWithError(c, channeldomain.ErrInvalidProduct)
		return
	}
	allocated, ok := parseQuantity(req.AllocatedQuantity)
	if !ok {
		AbortWithError(c, channeldomain.ErrInvalidQuantity)
		return
	}
	remaining, ok := parseQuantity(req.RemainingQuantity)
	if !ok {
		AbortWithError(c, channeldomain.ErrInvalidQuantity)
		return
	}

	var reported *decimal.Decimal
	if req.ChannelReportedQty != nil {
		qty, ok := parseQuantity(*req.ChannelReportedQty)
		if !ok {
			AbortWithError(c, channeldomain.ErrInvalidQuantity)
			return
		}
		reported = &qty
	}

	resp, err := s.channelSvc.UpsertFromSync(c.Request.Context(), channeldomain.SyncRequest{
		ProductID:          productID,
		SKU:                strings.TrimSpace(req.SKU),
		Channel:            strings.TrimSpace(req.Channel),
		StoreID:            strings.TrimSpace(req.StoreID),
		AllocatedQuantity:  allocated,
		RemainingQuantity:  remaining,
		ChannelReportedQty: reported,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListChannelAllocations(c *gin.Context) {
	channel := strings.TrimSpace(c.Query("channel"))
	if channel == "" {
		AbortWithError(c, channeldomain.ErrInvalidChannel)
		return
	}

	resp, err := s.channelSvc.ListScope(c.Request.Context(), channel, strings.TrimSpace(c.Query("store_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
