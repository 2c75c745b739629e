package enums

import "fmt"

// GroupPurchaseStatus tracks the lifecycle of a group purchase.
type GroupPurchaseStatus string

const (
	GroupPurchaseStatusOpen      GroupPurchaseStatus = "open"
	GroupPurchaseStatusFulfilled GroupPurchaseStatus = "fulfilled"
	GroupPurchaseStatusExpired   GroupPurchaseStatus = "expired"
	GroupPurchaseStatusCancelled GroupPurchaseStatus = "cancelled"
)

var validGroupPurchaseStatuses = []GroupPurchaseStatus{
	GroupPurchaseStatusOpen,
	GroupPurchaseStatusFulfilled,
	GroupPurchaseStatusExpired,
	GroupPurchaseStatusCancelled,
}

// String implements fmt.Stringer.
func (s GroupPurchaseStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known GroupPurchaseStatus.
func (s GroupPurchaseStatus) IsValid() bool {
	for _, candidate := range validGroupPurchaseStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s GroupPurchaseStatus) IsTerminal() bool {
	switch s {
	case GroupPurchaseStatusFulfilled, GroupPurchaseStatusExpired, GroupPurchaseStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseGroupPurchaseStatus converts raw input into a GroupPurchaseStatus.
func ParseGroupPurchaseStatus(value string) (GroupPurchaseStatus, error) {
	for _, candidate := range validGroupPurchaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group purchase status %q", value)
}
