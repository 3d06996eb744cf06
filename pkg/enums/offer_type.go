package enums

import "fmt"

// OfferType scopes a percentage offer to a product or a whole category.
type OfferType string

const (
	OfferTypeProduct  OfferType = "product"
	OfferTypeCategory OfferType = "category"
)

var validOfferTypes = []OfferType{
	OfferTypeProduct,
	OfferTypeCategory,
}

// String implements fmt.Stringer.
func (t OfferType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OfferType.
func (t OfferType) IsValid() bool {
	for _, candidate := range validOfferTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOfferType converts raw input into an OfferType.
func ParseOfferType(value string) (OfferType, error) {
	for _, candidate := range validOfferTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer type %q", value)
}
