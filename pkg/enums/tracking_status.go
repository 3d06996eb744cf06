package enums

import "fmt"

// TrackingStatus is the per-item fulfilment state within an order.
type TrackingStatus string

const (
	TrackingStatusPending         TrackingStatus = "pending"
	TrackingStatusShipped         TrackingStatus = "shipped"
	TrackingStatusDelivered       TrackingStatus = "delivered"
	TrackingStatusCancelled       TrackingStatus = "cancelled"
	TrackingStatusReturnRequested TrackingStatus = "return_requested"
	TrackingStatusReturnApproved  TrackingStatus = "return_approved"
	TrackingStatusReturnRejected  TrackingStatus = "return_rejected"
	TrackingStatusReturned        TrackingStatus = "returned"
)

var validTrackingStatuses = []TrackingStatus{
	TrackingStatusPending,
	TrackingStatusShipped,
	TrackingStatusDelivered,
	TrackingStatusCancelled,
	TrackingStatusReturnRequested,
	TrackingStatusReturnApproved,
	TrackingStatusReturnRejected,
	TrackingStatusReturned,
}

// InReturnFlow reports whether the item sits in the return workflow, where
// only the return operations may move it.
func (t TrackingStatus) InReturnFlow() bool {
	switch t {
	case TrackingStatusReturnRequested, TrackingStatusReturnApproved, TrackingStatusReturnRejected:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t TrackingStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TrackingStatus.
func (t TrackingStatus) IsValid() bool {
	for _, candidate := range validTrackingStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTrackingStatus converts raw input into a TrackingStatus.
func ParseTrackingStatus(value string) (TrackingStatus, error) {
	for _, candidate := range validTrackingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tracking status %q", value)
}
