package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable catalog entry. Prices are integer paise.
type Product struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string        `gorm:"column:name;not null"`
	CategoryID uuid.UUID     `gorm:"column:category_id;type:uuid;not null;index"`
	PricePaise int64         `gorm:"column:price_paise;not null"`
	Active     bool          `gorm:"column:active;not null;default:true"`
	Sizes      []ProductSize `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
