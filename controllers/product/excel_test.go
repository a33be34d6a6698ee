package productcontroller

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetdreams-bakery/storefront/database/dbtest"
	"github.com/sweetdreams-bakery/storefront/models"
	"github.com/tealeg/xlsx"
)

func TestProductWorkbookRoundTrip(t *testing.T) {
	db := dbtest.Seeded(t)

	var products []models.Product
	require.NoError(t, db.Order("id").Find(&products).Error)

	var buf bytes.Buffer
	require.NoError(t, WriteProductsWorkbook(&buf, products))

	book, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet := book.Sheets[0]
	require.Equal(t, len(products)+1, sheet.MaxRow)
	assert.Equal(t, "Price", sheet.Rows[0].Cells[4].String())

	// Change a price, add a new row and a broken row.
	sheet.Rows[1].Cells[4].SetString("99.00")
	row := sheet.AddRow()
	for _, v := range []string{"", "พาย", "Pie", "", "70", "4", "", "", "true", "false"} {
		row.AddCell().SetString(v)
	}
	broken := sheet.AddRow()
	for _, v := range []string{"", "", "Nameless", "", "10"} {
		broken.AddCell().SetString(v)
	}

	result, err := ImportProductsWorkbook(db, book)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 1, Updated: len(products), Skipped: 1}, result)

	first, err := models.FindProduct(db, products[0].ID)
	require.NoError(t, err)
	assert.True(t, first.Price.Equal(decimal.NewFromInt(99)), first.Price.String())
	assert.Equal(t, products[0].StockQuantity, first.StockQuantity)
	assert.Equal(t, products[0].CategoryID, first.CategoryID)

	var pie models.Product
	require.NoError(t, db.Where("name_en = ?", "Pie").First(&pie).Error)
	assert.Equal(t, 4, pie.StockQuantity)
	assert.True(t, pie.IsAvailable)
}

func TestImportRejectsEmptyWorkbook(t *testing.T) {
	db := dbtest.Open(t)
	book := xlsx.NewFile()
	_, err := book.AddSheet("Products")
	require.NoError(t, err)

	_, err = ImportProductsWorkbook(db, book)
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}
