package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a cart-level percentage discount gated by a minimum purchase
// amount (paise, compared against the pre-coupon total).
type Coupon struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string    `gorm:"column:code;not null;uniqueIndex"`
	DiscountPercent  int       `gorm:"column:discount_percent;not null"`
	MinPurchasePaise int64     `gorm:"column:min_purchase_paise;not null;default:0"`
	Active           bool      `gorm:"column:active;not null;default:true"`
	ExpiresAt        time.Time `gorm:"column:expires_at;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
