package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	recondomain "github.com/smallbiznis/lotline/internal/reconciliation/domain"
)

type runReconciliationRequest struct {
	Channel     string `json:"channel"`
	StoreID     string `json:"store_id,omitempty"`
	InitiatedBy string `json:"initiated_by,omitempty"`
}

func (s *Server) RunReconciliation(c *gin.Context) {
	var req runReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.reconSvc.Run(c.Request.Context(), recondomain.RunRequest{
		Channel:     strings.TrimSpace(req.Channel),
		StoreID:     strings.TrimSpace(req.StoreID),
		InitiatedBy: strings.TrimSpace(req.InitiatedBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetReconciliationRun(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		AbortWithError(c, recondomain.ErrRunNotFound)
		return
	}

	run, lines, err := s.reconSvc.GetRun(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"run":   run,
		"lines": lines,
	}})
}
