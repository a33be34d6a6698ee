package models

type Category struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"unique;not null" json:"name"`
	NameEN       string    `json:"name_en"`
	Icon         string    `json:"icon"`
	Description  string    `json:"description"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	Products     []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}
