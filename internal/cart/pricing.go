package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-shop/backend/pkg/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// percentOf returns pct% of amount in paise, rounded half-up to the nearest
// paisa. decimal keeps the intermediate product exact.
func percentOf(amountPaise int64, pct int) int64 {
	if amountPaise <= 0 || pct <= 0 {
		return 0
	}
	return decimal.NewFromInt(amountPaise).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(oneHundred).
		Round(0).
		IntPart()
}

// applyOffers prices one line. Offers scoped to the product and to its
// category stack additively; the combined percentage is capped at 100.
func applyOffers(unitPricePaise int64, quantity int, offers []models.Offer) (totalPaise, discountPaise int64, offerIDs []uuid.UUID) {
	gross := unitPricePaise * int64(quantity)

	pct := 0
	for _, offer := range offers {
		pct += offer.DiscountPercent
		offerIDs = append(offerIDs, offer.ID)
	}
	if pct > 100 {
		pct = 100
	}

	discountPaise = percentOf(gross, pct)
	totalPaise = gross - discountPaise
	return totalPaise, discountPaise, offerIDs
}

// couponDiscount computes the cart-level coupon cut. The minimum purchase
// gate compares against the pre-coupon (post-offer) total; a failed gate
// yields zero so the caller can drop the coupon.
func couponDiscount(preCouponTotalPaise int64, coupon *models.Coupon) int64 {
	if coupon == nil {
		return 0
	}
	if preCouponTotalPaise < coupon.MinPurchasePaise {
		return 0
	}
	return percentOf(preCouponTotalPaise, coupon.DiscountPercent)
}
