package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

type seedCategory struct {
	Name, NameEN, Icon, Description string
	DisplayOrder                    int
}

var defaultCategories = []seedCategory{
	{"เค้ก", "Cakes", "fas fa-birthday-cake", "เค้กสดใหม่ทุกรส", 1},
	{"ขนมปัง", "Pastries", "fas fa-bread-slice", "ขนมปังและเบเกอรี่", 2},
	{"เครื่องดื่ม", "Beverages", "fas fa-coffee", "กาแฟและเครื่องดื่ม", 3},
	{"ขนมหวาน", "Desserts", "fas fa-cookie-bite", "ขนมหวานและของหวาน", 4},
	{"เมนูพิเศษ", "Special", "fas fa-star", "เมนูพิเศษแนะนำ", 5},
}

type seedProduct struct {
	Name, NameEN, Description string
	Price                     int64
	Image, Category           string
	Featured                  bool
	Stock                     int
}

var defaultProducts = []seedProduct{
	{"เค้กช็อกโกแลต", "Chocolate Cake", "เค้กช็อกโกแลตเข้มข้น", 120, "chocolate_cake.jpg", "เค้ก", true, 10},
	{"ขนมปังฝรั่งเศส", "Baguette", "ขนมปังฝรั่งเศสอบสด", 60, "baguette.jpg", "ขนมปัง", false, 15},
	{"ลาเต้เย็น", "Iced Latte", "กาแฟลาเต้เย็นหอมกรุ่น", 65, "iced_latte.jpg", "เครื่องดื่ม", true, 20},
	{"บราวนี่", "Brownie", "บราวนี่ช็อกโกแลตเข้มข้น", 55, "brownie.jpg", "ขนมหวาน", false, 12},
	{"เค้กส้ม", "Orange Cake", "เค้กส้มสดใหม่", 110, "orange_cake.jpg", "เค้ก", true, 8},
	{"ครัวซองต์", "Croissant", "ครัวซองต์เนยสด", 45, "croissant.jpg", "ขนมปัง", false, 18},
	{"ชาเขียวเย็น", "Iced Green Tea", "ชาเขียวเย็นสูตรพิเศษ", 55, "iced_greentea.jpg", "เครื่องดื่ม", false, 25},
	{"มาการอง", "Macaron", "มาการองหลากรส", 35, "macaron.jpg", "ขนมหวาน", false, 30},
	{"เค้กเรดเวลเวท", "Red Velvet Cake", "เค้กเรดเวลเวทเนื้อนุ่ม", 130, "red_velvet.jpg", "เค้ก", true, 7},
}

// SeedResult counts rows inserted by Seed; existing rows are left alone.
type SeedResult struct {
	Categories int
	Products   int
	Admin      bool
}

// Seed inserts the default categories, products and admin account when missing.
// adminPasswordHash must already be hashed; an empty hash skips the admin account.
func Seed(ctx context.Context, db *gorm.DB, adminPasswordHash string) (SeedResult, error) {
	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryIDs := make(map[string]uint, len(defaultCategories))
		for _, sc := range defaultCategories {
			var cat models.Category
			err := tx.Where("name = ?", sc.Name).First(&cat).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				cat = models.Category{
					Name:         sc.Name,
					NameEN:       sc.NameEN,
					Icon:         sc.Icon,
					Description:  sc.Description,
					DisplayOrder: sc.DisplayOrder,
				}
				if err := tx.Create(&cat).Error; err != nil {
					return fmt.Errorf("seed category %s: %w", sc.NameEN, err)
				}
				res.Categories++
			} else if err != nil {
				return err
			}
			categoryIDs[sc.Name] = cat.ID
		}

		for _, sp := range defaultProducts {
			var existing models.Product
			err := tx.Where("name = ?", sp.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			catID := categoryIDs[sp.Category]
			product := models.Product{
				Name:          sp.Name,
				NameEN:        sp.NameEN,
				Description:   sp.Description,
				Price:         decimal.NewFromInt(sp.Price),
				Image:         sp.Image,
				CategoryID:    &catID,
				IsAvailable:   true,
				IsFeatured:    sp.Featured,
				StockQuantity: sp.Stock,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", sp.NameEN, err)
			}
			res.Products++
		}

		if adminPasswordHash == "" {
			return nil
		}
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		admin := models.User{
			Username: "admin",
			Email:    "admin@sweetdreams.com",
			Password: adminPasswordHash,
			FullName: "ผู้ดูแลระบบ",
			Role:     models.RoleAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		res.Admin = true
		return nil
	})
	return res, err
}
