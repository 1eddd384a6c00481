package models

import (
	"gorm.io/gorm"

	"recipecost/internal/units"
)

// Ingredient is a purchasable raw item with a known price per purchase batch.
// CostPerUnit is derived from Cost and Quantity at create/update time and is
// never edited directly.
type Ingredient struct {
	gorm.Model
	Name        string     `gorm:"not null" json:"name"`
	Cost        float64    `gorm:"not null" json:"cost"`
	Quantity    float64    `gorm:"not null" json:"quantity"`
	Unit        units.Unit `gorm:"not null" json:"unit"`
	CostPerUnit float64    `gorm:"not null" json:"cost_per_unit"`
	OwnerID     uint       `gorm:"not null;index" json:"owner_id"`
	Owner       *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}
