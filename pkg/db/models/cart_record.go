package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is the single active cart per user. Totals are cached from the
// last pricing pass and re-derived on every mutation.
type CartRecord struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	AppliedCouponID *uuid.UUID `gorm:"column:applied_coupon_id;type:uuid"`
	TotalPaise      int64      `gorm:"column:total_paise;not null;default:0"`
	DiscountPaise   int64      `gorm:"column:discount_paise;not null;default:0"`
	FinalPaise      int64      `gorm:"column:final_paise;not null;default:0"`
	TotalQuantity   int        `gorm:"column:total_quantity;not null;default:0"`
	Items           []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
