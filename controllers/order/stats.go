package orderControllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

// DailyStats are the dashboard counters for one calendar day.
type DailyStats struct {
	Date             string          `json:"date"`
	OrdersToday      int64           `json:"orders_today"`
	NewCustomers     int64           `json:"new_customers_today"`
	RevenueToday     decimal.Decimal `json:"revenue_today"`
	PendingOrders    int64           `json:"pending_orders"`
	LowStockProducts int64           `json:"low_stock_products"`
}

const lowStockThreshold = 5

// ComputeDailyStats counts orders that were not cancelled, new customer accounts,
// and revenue from completed orders, all created on the day of `day`.
func ComputeDailyStats(ctx context.Context, db *gorm.DB, day time.Time) (DailyStats, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	stats := DailyStats{Date: start.Format("2006-01-02")}
	db = db.WithContext(ctx)

	if err := db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ? AND status <> ?", start, end, models.OrderStatusCancelled).
		Count(&stats.OrdersToday).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ? AND role = ?", start, end, models.RoleCustomer).
		Count(&stats.NewCustomers).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("created_at >= ? AND created_at < ? AND status = ?", start, end, models.OrderStatusCompleted).
		Row().Scan(&stats.RevenueToday); err != nil {
		return stats, err
	}
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Product{}).
		Where("stock_quantity < ?", lowStockThreshold).
		Count(&stats.LowStockProducts).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// GET /admin/stats
func GetDailyStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		day := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			day = parsed
		}
		stats, err := ComputeDailyStats(c.Request.Context(), db, day)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
