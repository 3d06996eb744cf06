package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product/size line in a cart. UnitPricePaise snapshots the
// catalog price at add time; offer identifiers applied to the line are kept
// so pricing stays explainable.
type CartItem struct {
	ID              uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID   `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID       uuid.UUID   `gorm:"column:product_id;type:uuid;not null"`
	Size            string      `gorm:"column:size;not null"`
	Quantity        int         `gorm:"column:quantity;not null"`
	UnitPricePaise  int64       `gorm:"column:unit_price_paise;not null"`
	DiscountPaise   int64       `gorm:"column:discount_paise;not null;default:0"`
	TotalPaise      int64       `gorm:"column:total_paise;not null;default:0"`
	AppliedOfferIDs []uuid.UUID `gorm:"column:applied_offer_ids;type:jsonb;serializer:json"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
