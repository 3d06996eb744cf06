package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletAccount holds the authoritative balance per user. Debits run as a
// conditional update guarded by balance >= amount.
type WalletAccount struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	BalancePaise int64     `gorm:"column:balance_paise;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
