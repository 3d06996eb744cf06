package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/pkg/db/models"
)

// Repository reads offers and coupons. Expiry is enforced in the queries so
// stale rows never reach the pricing engine.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveForProduct(ctx context.Context, productID, categoryID uuid.UUID, at time.Time) ([]models.Offer, error)
	GetCouponByCode(ctx context.Context, code string, at time.Time) (*models.Coupon, error)
	GetCouponByID(ctx context.Context, id uuid.UUID, at time.Time) (*models.Coupon, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an offers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActiveForProduct(ctx context.Context, productID, categoryID uuid.UUID, at time.Time) ([]models.Offer, error) {
	var rows []models.Offer
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("valid_from <= ? AND valid_until >= ?", at, at).
		Where("product_id = ? OR category_id = ?", productID, categoryID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) GetCouponByCode(ctx context.Context, code string, at time.Time) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).
		Where("code = ? AND active = ? AND expires_at > ?", code, true, at).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) GetCouponByID(ctx context.Context, id uuid.UUID, at time.Time) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = ? AND expires_at > ?", id, true, at).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}
