package productcontroller

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var productColumns = []string{
	"ID", "Name", "NameEN", "Description", "Price", "StockQuantity",
	"Image", "CategoryID", "IsAvailable", "IsFeatured", "CreatedAt", "UpdatedAt",
}

// WriteProductsWorkbook writes products in the layout ImportProductsWorkbook reads.
func WriteProductsWorkbook(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range productColumns {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.NameEN)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.StockQuantity)
		row.AddCell().SetValue(p.Image)
		if p.CategoryID != nil {
			row.AddCell().SetValue(*p.CategoryID)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetString(strconv.FormatBool(p.IsAvailable))
		row.AddCell().SetString(strconv.FormatBool(p.IsFeatured))
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}

// GET /admin/products/export-excel
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.WithContext(c.Request.Context()).Order("id ASC").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := WriteProductsWorkbook(c.Writer, products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
