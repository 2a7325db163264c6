package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	balancedomain "github.com/smallbiznis/lotline/internal/balance/domain"
	catalogdomain "github.com/smallbiznis/lotline/internal/catalog/domain"
	channeldomain "github.com/smallbiznis/lotline/internal/channel/domain"
	inventorydomain "github.com/smallbiznis/lotline/internal/inventory/domain"
	ledgerdomain "github.com/smallbiznis/lotline/internal/ledger/domain"
	lotdomain "github.com/smallbiznis/lotline/internal/lot/domain"
	recondomain "github.com/smallbiznis/lotline/internal/reconciliation/domain"
	warehousedomain "github.com/smallbiznis/lotline/internal/warehouse/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware converts errors collected on the gin context into
// one JSON error response after the handler chain finishes.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isInsufficientStockError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "insufficient_stock",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	validationErrs := []error{
		ErrInvalidRequest,
		catalogdomain.ErrInvalidSKU,
		catalogdomain.ErrInvalidName,
		catalogdomain.ErrInvalidUnit,
		catalogdomain.ErrInvalidKind,
		catalogdomain.ErrInvalidReorderLevel,
		catalogdomain.ErrInvalidID,
		warehousedomain.ErrInvalidCode,
		warehousedomain.ErrInvalidName,
		warehousedomain.ErrInvalidID,
		lotdomain.ErrInvalidProduct,
		lotdomain.ErrInvalidKind,
		lotdomain.ErrInvalidSourceType,
		lotdomain.ErrInvalidSourceRef,
		lotdomain.ErrInvalidStatus,
		inventorydomain.ErrInvalidQuantity,
		inventorydomain.ErrInvalidUnit,
		inventorydomain.ErrInvalidWarehouse,
		inventorydomain.ErrInvalidProduct,
		inventorydomain.ErrInvalidReference,
		ledgerdomain.ErrInvalidType,
		ledgerdomain.ErrInvalidQuantity,
		ledgerdomain.ErrInvalidReference,
		channeldomain.ErrInvalidProduct,
		channeldomain.ErrInvalidChannel,
		channeldomain.ErrInvalidQuantity,
		recondomain.ErrInvalidChannel,
		balancedomain.ErrInvalidStatus,
	}
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isInsufficientStockError(err error) bool {
	return errors.Is(err, inventorydomain.ErrInsufficientAvailable) ||
		errors.Is(err, inventorydomain.ErrInsufficientReserved) ||
		errors.Is(err, balancedomain.ErrNegativeBalance)
}

func isConflictError(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, catalogdomain.ErrSKUExists) ||
		errors.Is(err, warehousedomain.ErrCodeExists) ||
		errors.Is(err, lotdomain.ErrInvalidTransition)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, catalogdomain.ErrNotFound) ||
		errors.Is(err, warehousedomain.ErrNotFound) ||
		errors.Is(err, lotdomain.ErrLotNotFound) ||
		errors.Is(err, balancedomain.ErrBalanceNotFound) ||
		errors.Is(err, recondomain.ErrRunNotFound)
}
