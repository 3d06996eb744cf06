package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductSize holds per-size sellable stock. Reservation and release run as
// conditional updates against the stock column, never read-modify-write.
type ProductSize struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Size      string    `gorm:"column:size;primaryKey"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
