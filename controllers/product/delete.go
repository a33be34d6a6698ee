package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

// DeleteProduct removes a product and any cart lines still pointing at it.
// Order items keep their snapshot of name and price.
func DeleteProduct(db *gorm.DB, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var image string
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			product, err := models.FindProduct(tx, id)
			if err != nil {
				return err
			}
			image = product.Image

			if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(product).Error
		})
		if err != nil {
			respond.Error(c, err)
			return
		}

		removeImage(uploadDir, image)
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
