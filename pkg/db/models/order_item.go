package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/enums"
)

// OrderItem captures the priced snapshot of each line within an order.
type OrderItem struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	Name             string               `gorm:"column:name;not null"`
	Size             string               `gorm:"column:size;not null"`
	Quantity         int                  `gorm:"column:quantity;not null"`
	UnitPricePaise   int64                `gorm:"column:unit_price_paise;not null"`
	DiscountPaise    int64                `gorm:"column:discount_paise;not null;default:0"`
	TotalPaise       int64                `gorm:"column:total_paise;not null"`
	TrackingStatus   enums.TrackingStatus `gorm:"column:tracking_status;not null;default:'pending'"`
	GatewayPaymentID *string              `gorm:"column:gateway_payment_id"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
