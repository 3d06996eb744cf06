package enums

import "fmt"

// AdminApproval records the operator decision on a return request.
type AdminApproval string

const (
	AdminApprovalPending  AdminApproval = "pending"
	AdminApprovalApproved AdminApproval = "approved"
	AdminApprovalRejected AdminApproval = "rejected"
)

var validAdminApprovals = []AdminApproval{
	AdminApprovalPending,
	AdminApprovalApproved,
	AdminApprovalRejected,
}

// String implements fmt.Stringer.
func (a AdminApproval) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdminApproval.
func (a AdminApproval) IsValid() bool {
	for _, candidate := range validAdminApprovals {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdminApproval converts raw input into an AdminApproval.
func ParseAdminApproval(value string) (AdminApproval, error) {
	for _, candidate := range validAdminApprovals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid admin approval %q", value)
}
