package productcontroller

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/models"
)

const productImageDir = "products"

var allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// saveImage stores an uploaded image under root/products and returns its public URL.
func saveImage(c *gin.Context, file *multipart.FileHeader, root string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return "", &models.ValidationError{Field: "image", Message: "only png, jpg, jpeg, gif and webp images are accepted"}
	}

	dir := filepath.Join(root, productImageDir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	base = strings.ReplaceAll(base, " ", "_")
	filename := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)

	if err := c.SaveUploadedFile(file, filepath.Join(dir, filename)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return "/uploads/" + productImageDir + "/" + filename, nil
}

// removeImage deletes a previously uploaded image. Seeded images that were
// never uploaded are not under root and are left alone.
func removeImage(root, publicURL string) {
	prefix := "/uploads/" + productImageDir + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return
	}
	_ = os.Remove(filepath.Join(root, productImageDir, filepath.Base(publicURL)))
}
