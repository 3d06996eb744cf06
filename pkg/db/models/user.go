package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/enums"
)

// User is an authenticated storefront account. Registration and credential
// management live in a separate identity service; this table is the local
// projection the settlement core joins against.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
