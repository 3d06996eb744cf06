package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/enums"
)

// LedgerEntry is the append-only money movement record. BalanceAfterPaise
// snapshots the wallet balance right after the entry was applied; replaying
// all entries for a user must reproduce the current balance.
type LedgerEntry struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Type              enums.LedgerEntryType `gorm:"column:type;not null"`
	AmountPaise       int64                 `gorm:"column:amount_paise;not null"`
	BalanceAfterPaise int64                 `gorm:"column:balance_after_paise;not null"`
	OrderID           *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	Description       string                `gorm:"column:description;not null"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}
