package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ImportResult counts what an import did with each data row.
type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// ImportProductsWorkbook reads the first sheet in the export layout. Rows with a known
// ID update that product, other rows are created. Rows without a name or with an
// unreadable price or stock are skipped.
func ImportProductsWorkbook(db *gorm.DB, file *xlsx.File) (ImportResult, error) {
	var result ImportResult
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return result, &models.ValidationError{Field: "file", Message: "excel file is empty or missing header row"}
	}

	sheet := file.Sheets[0]
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		name := get(1)
		price, errPrice := parsePrice(get(4))
		stock, errStock := parseStock(orDefault(get(5), "0"))
		if name == "" || errPrice != nil || errStock != nil {
			result.Skipped++
			continue
		}

		var categoryID *uint
		if id, err := strconv.ParseUint(get(7), 10, 64); err == nil && id > 0 {
			cid := uint(id)
			categoryID = &cid
		}

		product := models.Product{
			Name:          name,
			NameEN:        get(2),
			Description:   get(3),
			Price:         price,
			StockQuantity: stock,
			Image:         get(6),
			CategoryID:    categoryID,
			IsAvailable:   parseBoolCell(get(8), true),
			IsFeatured:    parseBoolCell(get(9), false),
		}

		if id, err := strconv.ParseUint(get(0), 10, 64); err == nil && id > 0 {
			var existing models.Product
			if err := db.First(&existing, id).Error; err == nil {
				product.ID = existing.ID
				product.CreatedAt = existing.CreatedAt
				if err := db.Save(&product).Error; err != nil {
					result.Skipped++
					continue
				}
				result.Updated++
				continue
			}
		}

		if err := db.Create(&product).Error; err != nil {
			result.Skipped++
			continue
		}
		result.Created++
	}
	return result, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func parseBoolCell(v string, fallback bool) bool {
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return fallback
	}
	return b
}

// POST /admin/products/import-excel
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		result, err := ImportProductsWorkbook(db.WithContext(c.Request.Context()), xlFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": result.Created,
			"updated_count": result.Updated,
			"skipped_count": result.Skipped,
		})
	}
}
