package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository mutates per-size stock. Both operations are single conditional
// updates so concurrent checkouts can never drive stock negative.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Reserve(ctx context.Context, productID uuid.UUID, size string, qty int) (bool, error)
	Release(ctx context.Context, productID uuid.UUID, size string, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Reserve decrements stock only when enough remains. Returns false when the
// guard failed, meaning another buyer got there first or stock is short.
func (r *repository) Reserve(ctx context.Context, productID uuid.UUID, size string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE product_sizes
		    SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		  WHERE product_id = ? AND size = ? AND stock >= ?`,
		qty, productID, size, qty,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Release returns previously reserved units to stock.
func (r *repository) Release(ctx context.Context, productID uuid.UUID, size string, qty int) error {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE product_sizes
		    SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		  WHERE product_id = ? AND size = ?`,
		qty, productID, size,
	)
	return res.Error
}
