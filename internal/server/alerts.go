package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/smallbiznis/lotline/internal/alert/domain"
)

func (s *Server) ListAlerts(c *gin.Context) {
	severity := alertdomain.AlertSeverity(strings.TrimSpace(c.Query("severity")))
	if severity != "" && !severity.Valid() {
		AbortWithError(c, alertdomain.ErrInvalidSeverity)
		return
	}

	limit, ok := parseOptionalInt(c.Query("limit"), 50)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.alertSvc.List(c.Request.Context(), severity, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
