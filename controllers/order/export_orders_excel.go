package orderControllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// WriteOrdersWorkbook writes one sheet of order headers and one of order lines.
func WriteOrdersWorkbook(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()

	headerSheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}
	headerRow := headerSheet.AddRow()
	for _, h := range []string{"ID", "OrderRef", "UserID", "Status", "CustomerName", "CustomerPhone", "ShippingAddress", "Notes", "TotalAmount", "CreatedAt"} {
		headerRow.AddCell().SetValue(h)
	}

	itemSheet, err := file.AddSheet("Items")
	if err != nil {
		return err
	}
	itemHeader := itemSheet.AddRow()
	for _, h := range []string{"OrderID", "ProductID", "ProductName", "Options", "Quantity", "UnitPrice", "TotalPrice"} {
		itemHeader.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := headerSheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.OrderRef)
		if o.UserID != nil {
			row.AddCell().SetValue(*o.UserID)
		} else {
			row.AddCell().SetValue("guest")
		}
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.CustomerName)
		row.AddCell().SetValue(o.CustomerPhone)
		row.AddCell().SetValue(o.ShippingAddress)
		row.AddCell().SetValue(o.Notes)
		row.AddCell().SetValue(o.TotalAmount.StringFixed(2))
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))

		for _, item := range o.Items {
			r := itemSheet.AddRow()
			r.AddCell().SetValue(o.ID)
			r.AddCell().SetValue(item.ProductID)
			r.AddCell().SetValue(item.ProductName)
			r.AddCell().SetValue(item.Options)
			r.AddCell().SetValue(item.Quantity)
			r.AddCell().SetValue(item.UnitPrice.StringFixed(2))
			r.AddCell().SetValue(item.TotalPrice.StringFixed(2))
		}
	}

	return file.Write(w)
}

// GET /admin/orders/export-excel
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
			respond.Error(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := WriteOrdersWorkbook(c.Writer, orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
