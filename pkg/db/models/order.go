package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/enums"
	"github.com/vastra-shop/backend/pkg/types"
)

// Order is the settlement aggregate. Status is re-derived from item tracking
// states except for the payment-failed and return phases, which the payment
// and return workflows set explicitly.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status              enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	GatewayOrderID      *string             `gorm:"column:gateway_order_id;index"`
	PaymentRetries      int                 `gorm:"column:payment_retries;not null;default:0"`
	TotalPaise          int64               `gorm:"column:total_paise;not null"`
	DiscountPaise       int64               `gorm:"column:discount_paise;not null;default:0"`
	DeliveryChargePaise int64               `gorm:"column:delivery_charge_paise;not null;default:0"`
	FinalPaise          int64               `gorm:"column:final_paise;not null"`
	ShippingAddress     types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ReturnRequested     bool                `gorm:"column:return_requested;not null;default:false"`
	ReturnReason        *string             `gorm:"column:return_reason"`
	AdminApproval       enums.AdminApproval `gorm:"column:admin_approval;not null;default:'pending'"`
	Refunded            bool                `gorm:"column:refunded;not null;default:false"`
	RefundPaise         int64               `gorm:"column:refund_paise;not null;default:0"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
