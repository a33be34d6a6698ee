// Package respond turns domain errors into JSON responses.
package respond

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/models"
)

// Error writes the status and body for err. Unknown errors are logged and hidden.
func Error(c *gin.Context, err error) {
	var (
		validation  *models.ValidationError
		stock       *models.InsufficientStockError
		notFound    *models.NotFoundError
		permission  *models.PermissionError
		cancellable *models.NotCancellableError
		transition  *models.InvalidTransitionError
		persistence *models.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "code": "validation_error", "field": validation.Field})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{
			"error":      stock.Error(),
			"code":       "insufficient_stock",
			"product_id": stock.ProductID,
			"product":    stock.Name,
			"requested":  stock.Requested,
			"available":  stock.Available,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error(), "code": "not_found"})
	case errors.As(err, &permission):
		c.JSON(http.StatusForbidden, gin.H{"error": permission.Error(), "code": "permission_denied"})
	case errors.As(err, &cancellable):
		c.JSON(http.StatusConflict, gin.H{"error": cancellable.Error(), "code": "not_cancellable", "reason": cancellable.Reason})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{
			"error": transition.Error(),
			"code":  "invalid_transition",
			"from":  transition.From,
			"to":    transition.To,
		})
	case errors.As(err, &persistence):
		slog.Default().With("module", "http").Error("store failure", "op", persistence.Op, "path", c.FullPath(), "error", persistence.Err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, please retry", "code": "persistence_error"})
	default:
		slog.Default().With("module", "http").Error("unhandled error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// ParamID parses a positive numeric path parameter, answering 400 when it is not one.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// UserID returns the authenticated account id, or nil for guests and anonymous callers.
func UserID(c *gin.Context) *uint {
	v, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == string(models.RoleAdmin)
}
