package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/enums"
)

// WalletTransaction is one movement on a wallet, newest first in listings.
type WalletTransaction struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index"`
	Type        enums.WalletTransactionType `gorm:"column:type;not null"`
	AmountPaise int64                       `gorm:"column:amount_paise;not null"`
	OrderID     *uuid.UUID                  `gorm:"column:order_id;type:uuid"`
	Description string                      `gorm:"column:description;not null"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
