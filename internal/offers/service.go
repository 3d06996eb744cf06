package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-shop/backend/pkg/db/models"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
)

// Service resolves the discounts the pricing engine may apply. Offers scoped
// to a product and to its category stack additively; coupons are exclusive
// and gated by a minimum purchase amount checked by the caller.
type Service interface {
	ActiveForProduct(ctx context.Context, productID, categoryID uuid.UUID) ([]models.Offer, error)
	CouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	CouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires an offers service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) ActiveForProduct(ctx context.Context, productID, categoryID uuid.UUID) ([]models.Offer, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	rows, err := s.repo.ListActiveForProduct(ctx, productID, categoryID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading offers")
	}
	return rows, nil
}

func (s *service) CouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	coupon, err := s.repo.GetCouponByCode(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}
	return coupon, nil
}

func (s *service) CouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id is required")
	}
	coupon, err := s.repo.GetCouponByID(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}
	return coupon, nil
}
