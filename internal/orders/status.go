package orders

import (
	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/enums"
)

// deriveStatus folds the per-item tracking states into the aggregate order
// status: every item delivered means delivered, every item cancelled means
// cancelled, any shipped item means shipped, anything else is pending. The
// payment-failed and return phases are set explicitly by their workflows and
// never derived here.
func deriveStatus(items []models.OrderItem) enums.OrderStatus {
	if len(items) == 0 {
		return enums.OrderStatusPending
	}

	allDelivered := true
	allCancelled := true
	anyShipped := false
	for _, item := range items {
		if item.TrackingStatus != enums.TrackingStatusDelivered {
			allDelivered = false
		}
		if item.TrackingStatus != enums.TrackingStatusCancelled {
			allCancelled = false
		}
		if item.TrackingStatus == enums.TrackingStatusShipped {
			anyShipped = true
		}
	}

	switch {
	case allDelivered:
		return enums.OrderStatusDelivered
	case allCancelled:
		return enums.OrderStatusCancelled
	case anyShipped:
		return enums.OrderStatusShipped
	default:
		return enums.OrderStatusPending
	}
}

// derivable reports whether the aggregate status may be overwritten by
// tracking-driven derivation.
func derivable(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPending, enums.OrderStatusConfirmed,
		enums.OrderStatusShipped, enums.OrderStatusDelivered,
		enums.OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// nextStatus re-derives the aggregate after an item change. A confirmed order
// stays confirmed while its items are still pending: confirmation records a
// settled payment, which the pending fallback must not erase.
func nextStatus(current enums.OrderStatus, items []models.OrderItem) enums.OrderStatus {
	if !derivable(current) {
		return current
	}
	next := deriveStatus(items)
	if current == enums.OrderStatusConfirmed && next == enums.OrderStatusPending {
		return current
	}
	return next
}
