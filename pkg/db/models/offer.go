package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/enums"
)

// Offer is a percentage discount scoped to a product or a category. Expiry
// is enforced at read time; expired offers are simply never resolved.
type Offer struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Type            enums.OfferType `gorm:"column:type;not null"`
	ProductID       *uuid.UUID      `gorm:"column:product_id;type:uuid;index"`
	CategoryID      *uuid.UUID      `gorm:"column:category_id;type:uuid;index"`
	DiscountPercent int             `gorm:"column:discount_percent;not null"`
	Active          bool            `gorm:"column:active;not null;default:true"`
	ValidFrom       time.Time       `gorm:"column:valid_from;not null"`
	ValidUntil      time.Time       `gorm:"column:valid_until;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
